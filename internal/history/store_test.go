package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsweep/internal/history"
	"subsweep/internal/library"
	"subsweep/internal/scan"
	"subsweep/internal/services"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func summaryAt(runID string, started time.Time) scan.Summary {
	return scan.Summary{
		RunID:               runID,
		Trigger:             "cli",
		StartedAt:           started,
		FinishedAt:          started.Add(90 * time.Second),
		Roots:               []library.RootID{"tv-root", library.AllRoots},
		Filter:              "spanish",
		Total:               12,
		Seen:                12,
		Skipped:             7,
		Processed:           4,
		Failed:              1,
		SubtitlesExtracted:  9,
		PlaceholdersWritten: 3,
		Progress:            100,
	}
}

func TestRecordAndListRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)

	id, err := store.Record(ctx, summaryAt("run-1", started), nil)
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "cli", run.Trigger)
	assert.Equal(t, "ok", run.Status)
	assert.Empty(t, run.Error)
	assert.Equal(t, []string{"tv-root", "all"}, run.Roots)
	assert.Equal(t, "spanish", run.Filter)
	assert.Equal(t, 7, run.Skipped)
	assert.Equal(t, 4, run.Processed)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 9, run.SubtitlesExtracted)
	assert.Equal(t, 3, run.PlaceholdersWritten)
	assert.Equal(t, 90*time.Second, run.Duration())
	assert.True(t, run.StartedAt.Equal(started))
}

func TestRecordClassifiesErrors(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.Record(ctx, summaryAt("cancelled", base), context.Canceled)
	require.NoError(t, err)
	_, err = store.Record(ctx, summaryAt("failed", base.Add(time.Hour)),
		services.Wrap(services.ErrTransient, "jellyfin", "request", "503", errors.New("unavailable")))
	require.NoError(t, err)

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "failed", runs[0].RunID)
	assert.Equal(t, "transient", runs[0].Status)
	assert.Contains(t, runs[0].Error, "503")
	assert.Equal(t, "cancelled", runs[1].Status)
}

func TestRecordRejectsDuplicateRunID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Record(ctx, summaryAt("dup", now), nil)
	require.NoError(t, err)
	_, err = store.Record(ctx, summaryAt("dup", now), nil)
	assert.Error(t, err)
}

func TestListOrdersNewestFirstAndLimits(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_, err := store.Record(ctx, summaryAt(id, base.Add(time.Duration(i)*time.Hour)), nil)
		require.NoError(t, err)
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}

func TestPruneKeepsNewest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		_, err := store.Record(ctx, summaryAt(id, base.Add(time.Duration(i)*time.Hour)), nil)
		require.NoError(t, err)
	}

	removed, err := store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "d", runs[0].RunID)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := history.Open(path)
	require.NoError(t, err)
	_, err = first.Record(context.Background(), summaryAt("keep", time.Now()), nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := history.Open(path)
	require.NoError(t, err)
	defer second.Close()
	runs, err := second.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, path, second.Path())
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := history.Open("  ")
	assert.ErrorIs(t, err, services.ErrConfiguration)
}
