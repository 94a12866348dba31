package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subsweep/internal/config"
	"subsweep/internal/testsupport"
)

const (
	testEpisodeID = "5d2c1b0a-9f8e-4d7c-8b6a-5f4e3d2c1b0a"
	testSourceID  = "src1"
)

const itemsPayload = `{"Items":[{"Id":"` + testEpisodeID + `","Name":"Pilot","SeriesName":"Show",
  "MediaSources":[{"Id":"` + testSourceID + `","Path":"/media/show/s01e01.mkv","Container":"mkv",
    "MediaStreams":[
      {"Index":0,"Type":"Video","Codec":"h264"},
      {"Index":1,"Type":"Audio","Codec":"aac","Language":"eng"},
      {"Index":2,"Type":"Subtitle","Codec":"subrip","Language":"spa"},
      {"Index":3,"Type":"Subtitle","Codec":"subrip","Language":"fre"},
      {"Index":4,"Type":"Subtitle","Codec":"PGSSUB","Language":"eng"}
    ]}]}]}`

// ffmpegStub writes a tiny cue into every subtitle output named on its
// command line.
const ffmpegStub = `#!/bin/sh
for a in "$@"; do
  case "$a" in
    *.srt|*.ass|*.ssa|*.vtt) printf '1\n00:00:01,000 --> 00:00:02,000\nhola\n' > "$a" ;;
  esac
done
exit 0
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	jellyfin   *httptest.Server
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(fakeJellyfin))
	t.Cleanup(server.Close)

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("JELLYFIN_API_KEY", "")
	t.Setenv("JELLYFIN_URL", "")

	opts = append([]testsupport.ConfigOption{
		testsupport.WithJellyfin(server.URL, "secret"),
		testsupport.WithLanguages(true, false),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	cfg.Extraction.FFmpegBinary = writeStub(t, testsupport.BaseDir(cfg), "ffmpeg", ffmpegStub)

	configPath := filepath.Join(homeDir, ".config", "subsweep", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, jellyfin: server}
}

func fakeJellyfin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Emby-Token") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	switch r.URL.Path {
	case "/System/Info":
		_, _ = w.Write([]byte(`{"ServerName":"test-server","Version":"10.10.0","Id":"abc"}`))
	case "/Library/VirtualFolders":
		_, _ = w.Write([]byte(`[{"Name":"TV Shows","ItemId":"tv-root","CollectionType":"tvshows"}]`))
	case "/Items":
		switch {
		case q.Get("Ids") != "":
			_, _ = w.Write([]byte(itemsPayload))
		case q.Get("Limit") == "0":
			_, _ = w.Write([]byte(`{"Items":[],"TotalRecordCount":1}`))
		case q.Get("StartIndex") != "0":
			_, _ = w.Write([]byte(`{"Items":[]}`))
		default:
			_, _ = w.Write([]byte(itemsPayload))
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
