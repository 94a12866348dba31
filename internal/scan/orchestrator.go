package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"subsweep/internal/language"
	"subsweep/internal/library"
	"subsweep/internal/logging"
	"subsweep/internal/metrics"
	"subsweep/internal/services"
)

// Options controls which libraries are scanned and which subtitles are kept.
type Options struct {
	LibraryNames []string
	Filter       language.Filter
	// PageSize overrides the index page size; zero means PageSize.
	PageSize int
}

// Dependencies are the collaborators of an Orchestrator. Prober is optional.
type Dependencies struct {
	Index     Index
	Artifacts Artifacts
	Extractor Extractor
	Cleaner   Cleaner
	Prober    Prober
}

// Orchestrator runs library scans. It is not safe for concurrent Run calls;
// callers serialize runs (see internal/schedule).
type Orchestrator struct {
	deps    Dependencies
	opts    Options
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	now     func() time.Time
}

// New constructs an Orchestrator.
func New(deps Dependencies, opts Options, logger *slog.Logger) (*Orchestrator, error) {
	if deps.Index == nil || deps.Artifacts == nil || deps.Extractor == nil || deps.Cleaner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "scan", "new", "index, artifacts, extractor and cleaner are required", nil)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = PageSize
	}
	return &Orchestrator{
		deps:    deps,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "scan"),
		sampler: logging.NewProgressSampler(10),
		now:     time.Now,
	}, nil
}

// Run scans every target root once. It returns ctx.Err() as soon as
// cancellation is observed between episodes; per-episode extraction and
// cleanup failures are logged, counted and rolled back without stopping the
// run. Index failures abort the run.
func (o *Orchestrator) Run(ctx context.Context, progress ProgressFunc) (Summary, error) {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	trigger, _ := services.TriggerFromContext(ctx)
	logger := logging.WithContext(ctx, o.logger)

	summary := Summary{
		RunID:     runID,
		Trigger:   trigger,
		StartedAt: o.now(),
		Filter:    o.opts.Filter.String(),
	}
	o.sampler.Reset()

	err := o.run(ctx, logger, progress, &summary)
	summary.FinishedAt = o.now()
	o.recordMetrics(summary, err)

	switch {
	case err == nil:
		logger.Info("scan complete",
			logging.Int("episodes", summary.Seen),
			logging.Int("skipped", summary.Skipped),
			logging.Int("processed", summary.Processed),
			logging.Int("failed", summary.Failed),
			logging.Int("subtitles_extracted", summary.SubtitlesExtracted),
			logging.Int("placeholders", summary.PlaceholdersWritten),
			logging.Duration("duration", summary.Duration()),
		)
	case summary.Cancelled:
		logger.Info("scan cancelled",
			logging.Int("episodes", summary.Seen),
			logging.Float64("progress", summary.Progress),
		)
	default:
		logging.ErrorWithContext(logger, "scan failed", "scan_failed",
			logging.Error(err),
			logging.Int("episodes", summary.Seen),
			logging.String(logging.FieldErrorHint, "check Jellyfin connectivity and credentials"),
		)
	}
	return summary, err
}

func (o *Orchestrator) run(ctx context.Context, logger *slog.Logger, progress ProgressFunc, summary *Summary) error {
	roots := o.resolveRoots(ctx, logger)
	summary.Roots = roots

	tracker := newProgressTracker(len(roots), func(percent float64) {
		summary.Progress = percent
		metrics.ScanProgress.Set(percent)
		if progress != nil {
			progress(percent)
		}
	})

	for _, root := range roots {
		if err := o.scanRoot(ctx, logger, root, tracker, summary); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				summary.Cancelled = true
			}
			return err
		}
	}
	tracker.finish()
	return nil
}

// resolveRoots maps configured library names to roots. An empty result (or a
// failed lookup) falls back to an unrestricted scan.
func (o *Orchestrator) resolveRoots(ctx context.Context, logger *slog.Logger) []library.RootID {
	if len(o.opts.LibraryNames) == 0 {
		return []library.RootID{library.AllRoots}
	}
	roots, err := o.deps.Index.ResolveRoots(ctx, o.opts.LibraryNames)
	if err != nil {
		logger.Info("library lookup failed; scanning all libraries",
			logging.Any("libraries", o.opts.LibraryNames),
			logging.Error(err),
		)
		return []library.RootID{library.AllRoots}
	}
	if len(roots) == 0 {
		logger.Info("no configured library matched; scanning all libraries",
			logging.Any("libraries", o.opts.LibraryNames),
		)
		return []library.RootID{library.AllRoots}
	}
	return roots
}

func (o *Orchestrator) scanRoot(ctx context.Context, logger *slog.Logger, root library.RootID, tracker *progressTracker, summary *Summary) error {
	logger = logger.With(logging.String(logging.FieldRoot, root.String()))

	total, err := o.deps.Index.CountEpisodes(ctx, root)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("count episodes in root %s: %w", root, err)
	}
	summary.Total += total
	tracker.beginRoot(total)
	logger.Info("scanning library root", logging.Int("episodes", total))

	for start := 0; start < total; start += o.opts.PageSize {
		page, err := o.deps.Index.ListEpisodes(ctx, root, start, o.opts.PageSize)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("list episodes in root %s at %d: %w", root, start, err)
		}
		if len(page) == 0 {
			logger.Debug("index returned an empty page; ending root early", logging.Int("start", start))
			break
		}
		for _, episode := range page {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := o.visit(ctx, logger, episode, summary); err != nil {
				return err
			}
			percent := tracker.advance()
			if o.sampler.ShouldLog(percent, root.String()) {
				logger.Info("scan progress",
					logging.Float64("percent", roundPercent(percent)),
					logging.Int("episodes", summary.Seen),
				)
			}
		}
	}
	return nil
}

// visit handles one episode. It returns an error only for cancellation.
func (o *Orchestrator) visit(ctx context.Context, logger *slog.Logger, episode library.Episode, summary *Summary) error {
	summary.Seen++
	logger = logger.With(
		logging.String(logging.FieldEpisodeID, episode.ID.String()),
		logging.String(logging.FieldEpisode, episode.Label()),
	)

	if o.deps.Artifacts.HasExtractedSubtitles(episode.ID) {
		summary.Skipped++
		metrics.EpisodesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		logger.Debug("subtitles already extracted; skipping")
		return nil
	}

	err := o.processEpisode(ctx, logger, episode, summary)
	if err == nil {
		summary.Processed++
		metrics.EpisodesTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
		return nil
	}

	o.rollback(logger, episode.ID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	summary.Failed++
	metrics.EpisodesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
	logging.ErrorWithContext(logger, "episode failed", "episode_failed",
		logging.Error(err),
		logging.String("error_class", services.Classify(err)),
		logging.String(logging.FieldErrorHint, "the episode will be retried on the next scan"),
	)
	return nil
}

func (o *Orchestrator) processEpisode(ctx context.Context, logger *slog.Logger, episode library.Episode, summary *Summary) error {
	if len(episode.Sources) == 0 {
		logger.Debug("episode has no media sources")
		return nil
	}
	for _, source := range episode.Sources {
		if source.EpisodeID.IsZero() {
			source.EpisodeID = episode.ID
		}
		source = o.enrich(ctx, logger, source)

		extracted, err := o.deps.Extractor.ExtractAll(ctx, source)
		if err != nil {
			return fmt.Errorf("extract source %s: %w", source.ID, err)
		}
		summary.SubtitlesExtracted += extracted.Extracted
		metrics.SubtitlesExtractedTotal.Add(float64(extracted.Extracted))

		cleaned, err := o.deps.Cleaner.CleanupUnwantedSubtitles(ctx, source, o.opts.Filter)
		summary.PlaceholdersWritten += cleaned.Replaced
		summary.PlaceholderFailures += cleaned.Failed
		metrics.PlaceholdersWrittenTotal.Add(float64(cleaned.Replaced))
		if err != nil {
			return fmt.Errorf("clean source %s: %w", source.ID, err)
		}

		logger.Debug("source processed",
			logging.String(logging.FieldSourceID, source.ID),
			logging.Int("extracted", extracted.Extracted),
			logging.Int("existing", extracted.Existing),
			logging.Int("placeholders", cleaned.Replaced),
		)
	}
	return nil
}

// enrich asks the prober for streams when the index returned none.
func (o *Orchestrator) enrich(ctx context.Context, logger *slog.Logger, source library.MediaSource) library.MediaSource {
	if o.deps.Prober == nil || len(source.Streams) > 0 || source.Path == "" {
		return source
	}
	streams, err := o.deps.Prober.ProbeStreams(ctx, source.Path)
	if err != nil {
		if ctx.Err() == nil {
			logging.WarnWithContext(logger, "stream probe failed", "probe_failed",
				logging.String(logging.FieldSourceID, source.ID),
				logging.String(logging.FieldPath, source.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "source is treated as having no subtitle streams"),
			)
		}
		return source
	}
	source.Streams = streams
	return source
}

// rollback purges a partially processed episode so the next run sees it as
// missing.
func (o *Orchestrator) rollback(logger *slog.Logger, id library.EpisodeID) {
	if err := o.deps.Artifacts.Purge(id); err != nil {
		logging.WarnWithContext(logger, "failed to purge episode artifacts", "purge_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "partial subtitles may mark the episode as extracted"),
			logging.String(logging.FieldErrorHint, "remove the episode directory manually"),
		)
	}
}

func (o *Orchestrator) recordMetrics(summary Summary, err error) {
	status := services.Classify(err)
	metrics.ScanRunsTotal.WithLabelValues(status).Inc()
	metrics.ScanDuration.Observe(summary.Duration().Seconds())
	if err == nil {
		metrics.ScanLastSuccess.Set(float64(summary.FinishedAt.Unix()))
	}
}

func roundPercent(p float64) float64 {
	return float64(int(p*10+0.5)) / 10
}
