package ffprobe

import (
	"context"
	"errors"
	"math"
	"testing"

	"subsweep/internal/library"
	"subsweep/internal/services"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "tags": {"language": "eng"}},
    {"index": 2, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"LANGUAGE": "spa", "title": "Latino"}},
    {"index": 3, "codec_name": "hdmv_pgs_subtitle", "codec_type": "subtitle", "tags": {"language": "und"}}
  ],
  "format": {"filename": "/media/a.mkv", "nb_streams": 4, "duration": "1320.5", "format_name": "matroska,webm"}
}`

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "subtitle"},
			{CodecType: "SUBTITLE"},
		},
		Format: Format{Duration: "123.45"},
	}
	if result.SubtitleStreamCount() != 2 {
		t.Fatalf("expected 2 subtitle streams, got %d", result.SubtitleStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if !math.IsNaN(Result{Format: Format{Duration: "bad"}}.DurationSeconds()) {
		t.Fatal("expected NaN for invalid duration")
	}
}

func TestProbeStreamsParsesTags(t *testing.T) {
	var gotArgs []string
	prober := &Prober{Binary: "ffprobe", run: func(_ context.Context, binary string, args ...string) ([]byte, error) {
		gotArgs = append([]string{binary}, args...)
		return []byte(sampleOutput), nil
	}}

	streams, err := prober.ProbeStreams(context.Background(), "/media/a.mkv")
	if err != nil {
		t.Fatalf("ProbeStreams returned error: %v", err)
	}
	if gotArgs[0] != "ffprobe" || gotArgs[len(gotArgs)-1] != "/media/a.mkv" {
		t.Fatalf("unexpected invocation: %v", gotArgs)
	}
	if len(streams) != 4 {
		t.Fatalf("expected 4 streams, got %d", len(streams))
	}
	sub := streams[2]
	if sub.Type != library.StreamSubtitle || sub.Language != "spa" || sub.Title != "Latino" || sub.Codec != "subrip" {
		t.Fatalf("unexpected subtitle stream: %+v", sub)
	}
	if streams[3].Language != "" {
		t.Fatalf("expected und to map to untagged, got %q", streams[3].Language)
	}
}

func TestProbeStreamsWrapsFailures(t *testing.T) {
	prober := &Prober{run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}}
	_, err := prober.ProbeStreams(context.Background(), "/media/a.mkv")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	if _, err := prober.ProbeStreams(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
