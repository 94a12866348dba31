package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"subsweep/internal/artifacts"
	"subsweep/internal/library"
	"subsweep/internal/testsupport"
)

func TestScanExtractsAndReplacesUnwanted(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Processed")

	layout := artifacts.NewLayout(env.cfg.Paths.SubtitleDir)
	id := library.MustParseEpisodeID(testEpisodeID)

	spanish, err := os.Stat(layout.File(id, testSourceID+"_2.srt"))
	if err != nil {
		t.Fatalf("expected spanish subtitle: %v", err)
	}
	if spanish.Size() == 0 {
		t.Fatal("spanish subtitle should keep its content")
	}
	french, err := os.Stat(layout.File(id, testSourceID+"_3.srt"))
	if err != nil {
		t.Fatalf("expected french placeholder: %v", err)
	}
	if french.Size() != 0 {
		t.Fatalf("french subtitle should be a placeholder, got %d bytes", french.Size())
	}
	if _, err := os.Stat(layout.File(id, testSourceID+"_4.sup")); !os.IsNotExist(err) {
		t.Fatalf("image subtitles must not be extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.SubtitleDir, ".staging", testEpisodeID)); !os.IsNotExist(err) {
		t.Fatalf("staging directory should be removed: %v", err)
	}

	if _, _, err := runCLI(t, []string{"scan"}, env.configPath); err != nil {
		t.Fatalf("second scan: %v", err)
	}

	journal := testsupport.MustOpenHistory(t, env.cfg)
	runs, err := journal.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected two recorded runs, got %d", len(runs))
	}
	latest, first := runs[0], runs[1]
	if first.Processed != 1 || first.SubtitlesExtracted != 2 || first.PlaceholdersWritten != 1 {
		t.Fatalf("unexpected first run: %+v", first)
	}
	if latest.Skipped != 1 || latest.Processed != 0 {
		t.Fatalf("second run should skip the episode: %+v", latest)
	}
	if latest.Status != "ok" || latest.Trigger != "cli" {
		t.Fatalf("unexpected status/trigger: %s/%s", latest.Status, latest.Trigger)
	}
}

func TestScanLibraryFlagFallsBackWhenUnknown(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"scan", "--library", "Cartoons"}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}
	journal := testsupport.MustOpenHistory(t, env.cfg)
	runs, err := journal.List(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run: %v", err)
	}
	if len(runs[0].Roots) != 1 || runs[0].Roots[0] != "all" {
		t.Fatalf("expected unrestricted scan, got %v", runs[0].Roots)
	}
}

func TestScanFailsOnBadCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Jellyfin.APIKey = "wrong"
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err == nil {
		t.Fatal("expected scan to fail with rejected api key")
	}
	requireContains(t, err.Error(), "api_key")
}
