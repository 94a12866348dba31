package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"subsweep/internal/artifacts"
	"subsweep/internal/language"
	"subsweep/internal/library"
	"subsweep/internal/logging"
	"subsweep/internal/services"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Extractor writes embedded text subtitles into the artifact tree.
type Extractor struct {
	fs     afero.Fs
	layout artifacts.Layout
	binary string
	run    CommandRunner
	logger *slog.Logger
}

// ExtractorOption customizes an Extractor.
type ExtractorOption func(*Extractor)

// WithCommandRunner overrides how ffmpeg is executed.
func WithCommandRunner(run CommandRunner) ExtractorOption {
	return func(e *Extractor) {
		if run != nil {
			e.run = run
		}
	}
}

// NewExtractor constructs an ffmpeg-backed Extractor. A nil fs selects the OS
// filesystem.
func NewExtractor(fs afero.Fs, layout artifacts.Layout, ffmpegBinary string, logger *slog.Logger, opts ...ExtractorOption) *Extractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	e := &Extractor{
		fs:     fs,
		layout: layout,
		binary: binary,
		run:    defaultCommandRunner,
		logger: logging.NewComponentLogger(logger, "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractReport summarizes one ExtractAll call.
type ExtractReport struct {
	Extracted      int
	Existing       int
	NotExtractable int
}

type pendingStream struct {
	stream library.MediaStream
	format outputFormat
	staged string
	target string
}

// ExtractAll extracts every text subtitle stream of source that has no file
// yet. All pending streams of a source are extracted in one ffmpeg run into a
// staging directory and moved into place only when every output exists.
func (e *Extractor) ExtractAll(ctx context.Context, source library.MediaSource) (ExtractReport, error) {
	var report ExtractReport
	logger := logging.WithContext(ctx, e.logger).With(
		logging.String(logging.FieldEpisodeID, source.EpisodeID.String()),
		logging.String(logging.FieldSourceID, source.ID),
	)

	staging := e.layout.StagingDir(source.EpisodeID)
	var pending []pendingStream
	for _, stream := range source.SubtitleStreams() {
		format, err := e.formatFor(stream, source)
		if err != nil {
			if errors.Is(err, services.ErrNotExtractable) {
				report.NotExtractable++
				logger.Debug("subtitle stream not extractable",
					logging.Int("stream_index", stream.Index),
					logging.String("codec", stream.Codec),
					logging.Bool("external", stream.IsExternal),
				)
				continue
			}
			return report, err
		}
		name := outputName(source.ID, stream.Index, format)
		target := e.layout.File(source.EpisodeID, name)
		if _, err := e.fs.Stat(target); err == nil {
			report.Existing++
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return report, services.Wrap(services.ErrTransient, "subtitles", "extract", "stat "+target, err)
		}
		pending = append(pending, pendingStream{
			stream: stream,
			format: format,
			staged: filepath.Join(staging, name),
			target: target,
		})
	}

	if len(pending) == 0 {
		logger.Debug("no subtitle streams to extract",
			logging.Int("existing", report.Existing),
			logging.Int("not_extractable", report.NotExtractable),
		)
		return report, nil
	}
	if strings.TrimSpace(source.Path) == "" {
		return report, services.Wrap(services.ErrValidation, "subtitles", "extract", "media source "+source.ID+" has no path", nil)
	}

	if err := e.fs.RemoveAll(staging); err != nil {
		return report, services.Wrap(services.ErrTransient, "subtitles", "extract", "reset staging "+staging, err)
	}
	if err := e.fs.MkdirAll(staging, 0o755); err != nil {
		return report, services.Wrap(services.ErrTransient, "subtitles", "extract", "create staging "+staging, err)
	}
	defer func() {
		if err := e.fs.RemoveAll(staging); err != nil {
			logger.Debug("staging cleanup failed", logging.String(logging.FieldPath, staging), logging.Error(err))
		}
	}()

	if err := e.run(ctx, e.binary, buildArgs(source.Path, pending)...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		return report, services.Wrap(services.ErrExternalTool, "subtitles", "extract", "ffmpeg failed for "+source.Path, err)
	}

	var missing []error
	for _, p := range pending {
		if _, err := e.fs.Stat(p.staged); err != nil {
			missing = append(missing, fmt.Errorf("stream %d: %w", p.stream.Index, err))
		}
	}
	if err := errors.Join(missing...); err != nil {
		return report, services.Wrap(services.ErrExternalTool, "subtitles", "extract", "ffmpeg produced incomplete output", err)
	}

	if err := e.fs.MkdirAll(e.layout.Dir(source.EpisodeID), 0o755); err != nil {
		return report, services.Wrap(services.ErrTransient, "subtitles", "extract", "create episode directory", err)
	}
	var moveErrs []error
	for _, p := range pending {
		if err := e.fs.Rename(p.staged, p.target); err != nil {
			moveErrs = append(moveErrs, fmt.Errorf("stream %d: %w", p.stream.Index, err))
			continue
		}
		report.Extracted++
		logger.Debug("subtitle extracted",
			logging.Int("stream_index", p.stream.Index),
			logging.String("language", language.DisplayName(p.stream.Language)),
			logging.String(logging.FieldPath, p.target),
		)
	}
	if err := errors.Join(moveErrs...); err != nil {
		return report, services.Wrap(services.ErrTransient, "subtitles", "extract", "move extracted subtitles", err)
	}

	logger.Info("subtitles extracted",
		logging.Int("extracted", report.Extracted),
		logging.Int("existing", report.Existing),
		logging.Int("not_extractable", report.NotExtractable),
	)
	return report, nil
}

func buildArgs(input string, pending []pendingStream) []string {
	args := []string{"-nostdin", "-hide_banner", "-loglevel", "error", "-y", "-i", input}
	for _, p := range pending {
		args = append(args,
			"-map", "0:"+strconv.Itoa(p.stream.Index),
			"-c:s", p.format.encoder,
			p.staged,
		)
	}
	return args
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
