package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SubtitleDir) == "" {
		return errors.New("paths.subtitle_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateJellyfin() error {
	if c.Jellyfin.URL == "" {
		return errors.New("jellyfin.url must be set (or export JELLYFIN_URL)")
	}
	parsed, err := url.Parse(c.Jellyfin.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("jellyfin.url %q must be an absolute http(s) URL", c.Jellyfin.URL)
	}
	if c.Jellyfin.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/subsweep/config.toml"
		}
		return fmt.Errorf("jellyfin.api_key is required. Set JELLYFIN_API_KEY env var or edit %s (create with 'subsweep config init')", defaultPath)
	}
	if c.Jellyfin.RetryAttempts < 1 {
		return errors.New("jellyfin.retry_attempts must be at least 1")
	}
	if c.Jellyfin.RequestsPerSecond < 0 {
		return errors.New("jellyfin.requests_per_second must be zero (unlimited) or positive")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if _, err := cron.ParseStandard(c.Schedule.CronExpr); err != nil {
		return fmt.Errorf("schedule.cron_expr %q: %w", c.Schedule.CronExpr, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must not be negative")
	}
	return nil
}
