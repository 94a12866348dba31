package subtitles

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/afero"

	"subsweep/internal/artifacts"
	"subsweep/internal/language"
	"subsweep/internal/library"
	"subsweep/internal/logging"
	"subsweep/internal/services"
)

// Cleaner replaces subtitle files whose language the filter rejects with
// zero-byte placeholders.
type Cleaner struct {
	fs       afero.Fs
	layout   artifacts.Layout
	resolver PathResolver
	logger   *slog.Logger
}

// NewCleaner constructs a Cleaner. A nil fs selects the OS filesystem.
func NewCleaner(fs afero.Fs, layout artifacts.Layout, resolver PathResolver, logger *slog.Logger) *Cleaner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Cleaner{
		fs:       fs,
		layout:   layout,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "cleaner"),
	}
}

// CleanupReport summarizes one cleanup pass over a media source.
type CleanupReport struct {
	Unwanted   int
	Replaced   int
	Failed     int
	Unresolved int
}

// CleanupUnwantedSubtitles collects the deduplicated set of files belonging to
// subtitle streams the filter rejects and replaces each with a placeholder.
// Each replacement is independent: failures are logged and counted but never
// stop the rest of the batch. Only cancellation returns an error.
func (c *Cleaner) CleanupUnwantedSubtitles(ctx context.Context, source library.MediaSource, filter language.Filter) (CleanupReport, error) {
	var report CleanupReport
	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldEpisodeID, source.EpisodeID.String()),
		logging.String(logging.FieldSourceID, source.ID),
	)

	paths := c.unwantedPaths(source, filter, logger, &report)
	report.Unwanted = len(paths)
	if len(paths) == 0 {
		logger.Debug("no unwanted subtitles", logging.String("filter", filter.String()))
		return report, nil
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := artifacts.ReplaceWithPlaceholder(c.fs, c.layout, path); err != nil {
			report.Failed++
			logging.WarnWithContext(logger, "placeholder write failed", "placeholder_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "unwanted subtitle may remain on disk until the next run"),
			)
			continue
		}
		report.Replaced++
	}

	logger.Info("unwanted subtitles replaced with placeholders",
		logging.Int("unwanted", report.Unwanted),
		logging.Int("replaced", report.Replaced),
		logging.Int("failed", report.Failed),
		logging.String("filter", filter.String()),
	)
	return report, nil
}

func (c *Cleaner) unwantedPaths(source library.MediaSource, filter language.Filter, logger *slog.Logger, report *CleanupReport) []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, stream := range source.SubtitleStreams() {
		if language.ShouldExtract(stream.Language, filter) {
			continue
		}
		path, err := c.resolver.ResolveSubtitleFilePath(stream, source)
		if err != nil {
			report.Unresolved++
			level := slog.LevelWarn
			if errors.Is(err, services.ErrNotExtractable) {
				level = slog.LevelDebug
			}
			logger.Log(context.Background(), level, "subtitle path unresolved",
				logging.Int("stream_index", stream.Index),
				logging.String("language", language.DisplayName(stream.Language)),
				logging.Error(err),
			)
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	return paths
}
