package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"subsweep/internal/artifacts"
	"subsweep/internal/config"
	"subsweep/internal/history"
	"subsweep/internal/media/ffprobe"
	"subsweep/internal/scan"
	"subsweep/internal/schedule"
	"subsweep/internal/services/jellyfin"
	"subsweep/internal/subtitles"
)

// pipeline holds the wired scan components for one process.
type pipeline struct {
	store        *artifacts.Store
	extractor    *subtitles.Extractor
	index        *jellyfin.Client
	orchestrator *scan.Orchestrator
}

// pipelineOverrides adjusts a pipeline for one command invocation.
type pipelineOverrides struct {
	libraries []string
}

func buildPipeline(cfg *config.Config, logger *slog.Logger, overrides pipelineOverrides) (*pipeline, error) {
	fs := afero.NewOsFs()
	layout := artifacts.NewLayout(cfg.Paths.SubtitleDir)
	store := artifacts.NewStore(fs, layout, logger)
	extractor := subtitles.NewExtractor(fs, layout, cfg.Extraction.FFmpegBinary, logger)
	cleaner := subtitles.NewCleaner(fs, layout, extractor, logger)

	index, err := jellyfin.NewConfiguredClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	deps := scan.Dependencies{
		Index:     index,
		Artifacts: store,
		Extractor: extractor,
		Cleaner:   cleaner,
	}
	if cfg.Extraction.ProbeMissingStreams {
		deps.Prober = ffprobe.NewProber(cfg.Extraction.FFprobeBinary)
	}

	libraries := cfg.Extraction.LibraryNames
	if len(overrides.libraries) > 0 {
		libraries = overrides.libraries
	}
	orchestrator, err := scan.New(deps, scan.Options{
		LibraryNames: libraries,
		Filter:       cfg.LanguageFilter(),
	}, logger)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		store:        store,
		extractor:    extractor,
		index:        index,
		orchestrator: orchestrator,
	}, nil
}

// newRunner opens the history journal and wraps the orchestrator in a
// scheduler. The caller closes the returned store.
func newRunner(cfg *config.Config, p *pipeline, logger *slog.Logger) (*schedule.Runner, *history.Store, error) {
	journal, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	runner, err := schedule.New(p.orchestrator.Run, cfg.LockPath(),
		schedule.WithRecorder(journal, history.DefaultRetention),
		schedule.WithLogger(logger),
	)
	if err != nil {
		_ = journal.Close()
		return nil, nil, err
	}
	return runner, journal, nil
}
