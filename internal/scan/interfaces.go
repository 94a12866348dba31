package scan

import (
	"context"

	"subsweep/internal/language"
	"subsweep/internal/library"
	"subsweep/internal/subtitles"
)

// PageSize is the number of episodes requested per index page.
const PageSize = 250

// Index enumerates library roots and their episodes.
type Index interface {
	ResolveRoots(ctx context.Context, names []string) ([]library.RootID, error)
	CountEpisodes(ctx context.Context, root library.RootID) (int, error)
	ListEpisodes(ctx context.Context, root library.RootID, start, limit int) ([]library.Episode, error)
}

// Artifacts answers the "already extracted" question and rolls back failed
// episodes.
type Artifacts interface {
	HasExtractedSubtitles(id library.EpisodeID) bool
	Purge(id library.EpisodeID) error
}

// Extractor writes every extractable subtitle stream of a source.
type Extractor interface {
	ExtractAll(ctx context.Context, source library.MediaSource) (subtitles.ExtractReport, error)
}

// Cleaner replaces unwanted subtitle files with placeholders.
type Cleaner interface {
	CleanupUnwantedSubtitles(ctx context.Context, source library.MediaSource, filter language.Filter) (subtitles.CleanupReport, error)
}

// Prober fills in streams for sources the index returned without any.
type Prober interface {
	ProbeStreams(ctx context.Context, path string) ([]library.MediaStream, error)
}

// ProgressFunc receives overall progress in [0, 100].
type ProgressFunc func(percent float64)
