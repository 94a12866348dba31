package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"subsweep/internal/library"
	"subsweep/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Tags        map[string]string `json:"tags"`
	Disposition map[string]int    `json:"disposition"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Runner executes ffprobe and returns its standard output.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	return inspect(ctx, defaultRunner, binary, path)
}

func inspect(ctx context.Context, run Runner, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	output, err := run(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// SubtitleStreamCount returns the number of subtitle streams discovered.
func (r Result) SubtitleStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "subtitle") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// MediaStreams converts the probe result into library streams.
func (r Result) MediaStreams() []library.MediaStream {
	out := make([]library.MediaStream, 0, len(r.Streams))
	for _, s := range r.Streams {
		out = append(out, library.MediaStream{
			Index:    s.Index,
			Type:     library.ParseStreamType(s.CodecType),
			Language: tag(s.Tags, "language"),
			Codec:    s.CodecName,
			Title:    tag(s.Tags, "title"),
		})
	}
	return out
}

func tag(tags map[string]string, key string) string {
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			v = strings.TrimSpace(v)
			if strings.EqualFold(v, "und") {
				return ""
			}
			return v
		}
	}
	return ""
}

// Prober reads stream metadata straight from media files.
type Prober struct {
	Binary string
	run    Runner
}

// NewProber returns a Prober using binary (default "ffprobe").
func NewProber(binary string) *Prober {
	return &Prober{Binary: binary, run: defaultRunner}
}

// ProbeStreams returns the streams of the file at path.
func (p *Prober) ProbeStreams(ctx context.Context, path string) ([]library.MediaStream, error) {
	run := p.run
	if run == nil {
		run = defaultRunner
	}
	result, err := inspect(ctx, run, p.Binary, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrExternalTool, "ffprobe", "probe", path, err)
	}
	return result.MediaStreams(), nil
}
