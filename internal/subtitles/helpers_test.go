package subtitles

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"subsweep/internal/artifacts"
	"subsweep/internal/library"
	"subsweep/internal/logging"
)

var episodeID = library.MustParseEpisodeID("c0ffee00-1111-4222-8333-444455556666")

func testLayout() artifacts.Layout {
	return artifacts.NewLayout("/subs")
}

func subtitleStream(index int, lang, codec string) library.MediaStream {
	return library.MediaStream{Index: index, Type: library.StreamSubtitle, Language: lang, Codec: codec}
}

func testSource(streams ...library.MediaStream) library.MediaSource {
	all := append([]library.MediaStream{
		{Index: 0, Type: library.StreamVideo, Codec: "h264"},
		{Index: 1, Type: library.StreamAudio, Codec: "aac", Language: "eng"},
	}, streams...)
	return library.MediaSource{
		ID:        "9f8e7d6c5b4a39281706f5e4d3c2b1a0",
		EpisodeID: episodeID,
		Path:      "/media/Show/S01E01.mkv",
		Container: "mkv",
		Streams:   all,
	}
}

// fakeFFmpeg writes every output path named on the command line into fs.
type fakeFFmpeg struct {
	mu      sync.Mutex
	fs      afero.Fs
	calls   [][]string
	err     error
	skip    string
	content string
}

func (f *fakeFFmpeg) run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return f.err
	}
	content := f.content
	if content == "" {
		content = "1\n00:00:01,000 --> 00:00:02,000\nhola\n"
	}
	for i, arg := range args {
		if i > 0 && args[i-1] == "-c:s" {
			continue
		}
		if strings.HasPrefix(arg, "/subs/") {
			if f.skip != "" && strings.HasSuffix(arg, f.skip) {
				continue
			}
			if err := afero.WriteFile(f.fs, arg, []byte(content), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

func newTestExtractor(fs afero.Fs, ff *fakeFFmpeg) *Extractor {
	return NewExtractor(fs, testLayout(), "ffmpeg", logging.NewNop(), WithCommandRunner(ff.run))
}
