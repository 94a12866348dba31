package config

const (
	defaultSubtitleDir            = "~/.local/share/subsweep/subtitles"
	defaultDataDir                = "~/.local/share/subsweep"
	defaultLogDir                 = "~/.local/share/subsweep/logs"
	defaultJellyfinURL            = "http://localhost:8096"
	defaultJellyfinTimeoutSeconds = 30
	defaultJellyfinRetryAttempts  = 3
	defaultJellyfinRequestsPerSec = 10
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultCronExpr               = "0 3 * * *"
	defaultMetricsBind            = "127.0.0.1:9464"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogMaxSizeMB           = 20
	defaultLogMaxBackups          = 5
	defaultLogMaxAgeDays          = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SubtitleDir: defaultSubtitleDir,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
		},
		Jellyfin: Jellyfin{
			TimeoutSeconds:    defaultJellyfinTimeoutSeconds,
			RetryAttempts:     defaultJellyfinRetryAttempts,
			RequestsPerSecond: defaultJellyfinRequestsPerSec,
		},
		Extraction: Extraction{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Schedule: Schedule{
			CronExpr: defaultCronExpr,
		},
		Metrics: Metrics{
			Bind: defaultMetricsBind,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
