package main

import (
	"testing"

	"subsweep/internal/artifacts"
	"subsweep/internal/library"
	"subsweep/internal/testsupport"
)

func TestCheckReportsMissingEpisode(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check", testEpisodeID}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "Extracted:  no")
	requireContains(t, out, "No subtitle files")
}

func TestCheckListsArtifactsAndDecisions(t *testing.T) {
	env := setupCLITestEnv(t)
	layout := artifacts.NewLayout(env.cfg.Paths.SubtitleDir)
	id := library.MustParseEpisodeID(testEpisodeID)
	testsupport.WriteFile(t, layout.File(id, testSourceID+"_2.srt"), 64)

	out, _, err := runCLI(t, []string{"check", "--streams", testEpisodeID}, env.configPath)
	if err != nil {
		t.Fatalf("check --streams: %v", err)
	}
	requireContains(t, out, "Extracted:  yes")
	requireContains(t, out, testSourceID+"_2.srt")
	requireContains(t, out, "Show - Pilot")
	requireContains(t, out, "Spanish")
	requireContains(t, out, "discard")
	requireContains(t, out, "(not extractable)")
}

func TestCheckRejectsMalformedID(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"check", "not-an-id"}, env.configPath); err == nil {
		t.Fatal("expected error for malformed episode id")
	}
}
