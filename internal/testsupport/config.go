package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subsweep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The Jellyfin section points at an unroutable placeholder; tests that talk
// to a server use WithJellyfin.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SubtitleDir = filepath.Join(base, "subtitles")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Jellyfin.URL = "http://127.0.0.1:1"
	cfgVal.Jellyfin.APIKey = "test"
	cfgVal.Jellyfin.RetryAttempts = 1
	cfgVal.Jellyfin.RequestsPerSecond = 0
	cfgVal.Metrics.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithJellyfin points the config at a (usually httptest) server.
func WithJellyfin(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jellyfin.URL = url
		b.cfg.Jellyfin.APIKey = apiKey
	}
}

// WithLanguages sets the extraction language toggles.
func WithLanguages(spanish, english bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.ExtractSpanish = spanish
		b.cfg.Extraction.ExtractEnglish = english
	}
}

// WithLibraries restricts scans to the named libraries.
func WithLibraries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.LibraryNames = names
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SubtitleDir)
}
