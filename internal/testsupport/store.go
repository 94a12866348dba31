package testsupport

import (
	"context"
	"testing"
	"time"

	"subsweep/internal/config"
	"subsweep/internal/history"
	"subsweep/internal/scan"
)

// MustOpenHistory opens the history journal for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun journals a finished run with the given counters.
func RecordRun(t testing.TB, store *history.Store, runID string, processed, skipped int, runErr error) {
	t.Helper()

	started := time.Now().Add(-time.Minute)
	summary := scan.Summary{
		RunID:      runID,
		Trigger:    "cli",
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Filter:     "all",
		Total:      processed + skipped,
		Seen:       processed + skipped,
		Processed:  processed,
		Skipped:    skipped,
		Progress:   100,
	}
	if _, err := store.Record(context.Background(), summary, runErr); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
}
