package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subsweep/internal/language"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SubtitleDir string `toml:"subtitle_dir"`
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
}

// Jellyfin contains connection settings for the library index.
type Jellyfin struct {
	URL               string  `toml:"url"`
	APIKey            string  `toml:"api_key"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RetryAttempts     int     `toml:"retry_attempts"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Extraction contains subtitle extraction and language filter settings.
type Extraction struct {
	ExtractSpanish bool     `toml:"extract_spanish"`
	ExtractEnglish bool     `toml:"extract_english"`
	LibraryNames   []string `toml:"library_names"`
	FFmpegBinary   string   `toml:"ffmpeg_binary"`
	FFprobeBinary  string   `toml:"ffprobe_binary"`
	// ProbeMissingStreams runs ffprobe on sources the index reported without
	// stream metadata.
	ProbeMissingStreams bool `toml:"probe_missing_streams"`
}

// Schedule contains daemon trigger settings.
type Schedule struct {
	CronExpr   string `toml:"cron_expr"`
	RunOnStart bool   `toml:"run_on_start"`
}

// Metrics contains Prometheus exporter settings.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Config encapsulates all configuration values for subsweep.
//
// Configuration sections by subsystem:
//   - Paths: subtitle artifact root, state and log directories
//   - Jellyfin: library index connection, retries and throttling
//   - Extraction: language toggles, library restriction and tool binaries
//   - Schedule: daemon cron trigger
//   - Metrics: Prometheus exporter
//   - Logging: log format, level, and rotation
type Config struct {
	Paths      Paths      `toml:"paths"`
	Jellyfin   Jellyfin   `toml:"jellyfin"`
	Extraction Extraction `toml:"extraction"`
	Schedule   Schedule   `toml:"schedule"`
	Metrics    Metrics    `toml:"metrics"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subsweep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subsweep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the scanner writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.SubtitleDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LanguageFilter returns the configured extraction toggles.
func (c *Config) LanguageFilter() language.Filter {
	return language.Filter{
		Spanish: c.Extraction.ExtractSpanish,
		English: c.Extraction.ExtractEnglish,
	}
}

// JellyfinTimeout returns the per-request timeout for the library index.
func (c *Config) JellyfinTimeout() time.Duration {
	return time.Duration(c.Jellyfin.TimeoutSeconds) * time.Second
}

// HistoryPath returns the SQLite run journal location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the cross-process scan lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "subsweep.lock")
}

// LogPath returns the rotating log file location, or "" when file logging is off.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "subsweep.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
