package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeJellyfin()
	c.normalizeExtraction()
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SubtitleDir, err = expandPath(strings.TrimSpace(c.Paths.SubtitleDir)); err != nil {
		return fmt.Errorf("paths.subtitle_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeJellyfin() {
	if c.Jellyfin.URL == "" {
		if value, ok := os.LookupEnv("JELLYFIN_URL"); ok {
			c.Jellyfin.URL = value
		}
	}
	if c.Jellyfin.APIKey == "" {
		if value, ok := os.LookupEnv("JELLYFIN_API_KEY"); ok {
			c.Jellyfin.APIKey = value
		}
	}
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	if c.Jellyfin.URL == "" {
		c.Jellyfin.URL = defaultJellyfinURL
	}
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)
	if c.Jellyfin.TimeoutSeconds <= 0 {
		c.Jellyfin.TimeoutSeconds = defaultJellyfinTimeoutSeconds
	}
}

func (c *Config) normalizeExtraction() {
	names := make([]string, 0, len(c.Extraction.LibraryNames))
	seen := make(map[string]struct{}, len(c.Extraction.LibraryNames))
	for _, name := range c.Extraction.LibraryNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	c.Extraction.LibraryNames = names

	c.Extraction.FFmpegBinary = strings.TrimSpace(c.Extraction.FFmpegBinary)
	if c.Extraction.FFmpegBinary == "" {
		c.Extraction.FFmpegBinary = defaultFFmpegBinary
	}
	c.Extraction.FFprobeBinary = strings.TrimSpace(c.Extraction.FFprobeBinary)
	if c.Extraction.FFprobeBinary == "" {
		c.Extraction.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.CronExpr = strings.TrimSpace(c.Schedule.CronExpr)
	if c.Schedule.CronExpr == "" {
		c.Schedule.CronExpr = defaultCronExpr
	}
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	if c.Metrics.Bind == "" {
		c.Metrics.Bind = defaultMetricsBind
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
