package scan

import (
	"context"
	"strings"

	"subsweep/internal/language"
	"subsweep/internal/library"
	"subsweep/internal/subtitles"
)

type listCall struct {
	root  library.RootID
	start int
	limit int
}

type fakeIndex struct {
	libraries  map[string]library.RootID
	resolveErr error
	episodes   map[library.RootID][]library.Episode
	totals     map[library.RootID]int
	countErr   error
	listErr    error

	resolveCalls [][]string
	countCalls   []library.RootID
	listCalls    []listCall
}

func (f *fakeIndex) ResolveRoots(_ context.Context, names []string) ([]library.RootID, error) {
	f.resolveCalls = append(f.resolveCalls, names)
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	var roots []library.RootID
	for _, name := range names {
		if root, ok := f.libraries[strings.ToLower(name)]; ok {
			roots = append(roots, root)
		}
	}
	return roots, nil
}

func (f *fakeIndex) CountEpisodes(_ context.Context, root library.RootID) (int, error) {
	f.countCalls = append(f.countCalls, root)
	if f.countErr != nil {
		return 0, f.countErr
	}
	if total, ok := f.totals[root]; ok {
		return total, nil
	}
	return len(f.episodes[root]), nil
}

func (f *fakeIndex) ListEpisodes(_ context.Context, root library.RootID, start, limit int) ([]library.Episode, error) {
	f.listCalls = append(f.listCalls, listCall{root: root, start: start, limit: limit})
	if f.listErr != nil {
		return nil, f.listErr
	}
	all := f.episodes[root]
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+limit, len(all))
	return append([]library.Episode(nil), all[start:end]...), nil
}

type fakeArtifacts struct {
	present  map[library.EpisodeID]bool
	purged   []library.EpisodeID
	purgeErr error
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{present: make(map[library.EpisodeID]bool)}
}

func (f *fakeArtifacts) HasExtractedSubtitles(id library.EpisodeID) bool {
	return f.present[id]
}

func (f *fakeArtifacts) Purge(id library.EpisodeID) error {
	f.purged = append(f.purged, id)
	delete(f.present, id)
	return f.purgeErr
}

// fakeExtractor marks the episode present on success, like a real extraction
// that wrote at least one non-empty file.
type fakeExtractor struct {
	artifacts *fakeArtifacts
	failFor   map[library.EpisodeID]error
	onCall    func(n int) error
	calls     []library.MediaSource
}

func (f *fakeExtractor) ExtractAll(_ context.Context, source library.MediaSource) (subtitles.ExtractReport, error) {
	f.calls = append(f.calls, source)
	if f.onCall != nil {
		if err := f.onCall(len(f.calls)); err != nil {
			return subtitles.ExtractReport{}, err
		}
	}
	if err := f.failFor[source.EpisodeID]; err != nil {
		return subtitles.ExtractReport{}, err
	}
	n := len(source.SubtitleStreams())
	if n > 0 {
		f.artifacts.present[source.EpisodeID] = true
	}
	return subtitles.ExtractReport{Extracted: n}, nil
}

type fakeCleaner struct {
	calls   []library.MediaSource
	filters []language.Filter
	err     error
}

func (f *fakeCleaner) CleanupUnwantedSubtitles(_ context.Context, source library.MediaSource, filter language.Filter) (subtitles.CleanupReport, error) {
	f.calls = append(f.calls, source)
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return subtitles.CleanupReport{}, f.err
	}
	unwanted := 0
	for _, stream := range source.SubtitleStreams() {
		if !language.ShouldExtract(stream.Language, filter) {
			unwanted++
		}
	}
	return subtitles.CleanupReport{Unwanted: unwanted, Replaced: unwanted}, nil
}

type fakeProber struct {
	streams []library.MediaStream
	err     error
	paths   []string
}

func (f *fakeProber) ProbeStreams(_ context.Context, path string) ([]library.MediaStream, error) {
	f.paths = append(f.paths, path)
	return f.streams, f.err
}

func makeEpisodes(n int) []library.Episode {
	out := make([]library.Episode, 0, n)
	for i := 0; i < n; i++ {
		id := library.NewEpisodeID()
		out = append(out, library.Episode{
			ID:         id,
			Name:       "Episode",
			SeriesName: "Show",
			Sources: []library.MediaSource{{
				ID:        "src-" + id.String()[:8],
				EpisodeID: id,
				Path:      "/media/show/" + id.String() + ".mkv",
				Streams: []library.MediaStream{
					{Index: 0, Type: library.StreamVideo, Codec: "h264"},
					{Index: 2, Type: library.StreamSubtitle, Language: "spa", Codec: "subrip"},
					{Index: 3, Type: library.StreamSubtitle, Language: "fre", Codec: "subrip"},
				},
			}},
		})
	}
	return out
}

type harness struct {
	index     *fakeIndex
	artifacts *fakeArtifacts
	extractor *fakeExtractor
	cleaner   *fakeCleaner
}

func newHarness(episodes map[library.RootID][]library.Episode) *harness {
	arts := newFakeArtifacts()
	return &harness{
		index:     &fakeIndex{episodes: episodes, libraries: map[string]library.RootID{}},
		artifacts: arts,
		extractor: &fakeExtractor{artifacts: arts, failFor: map[library.EpisodeID]error{}},
		cleaner:   &fakeCleaner{},
	}
}

func (h *harness) deps() Dependencies {
	return Dependencies{
		Index:     h.index,
		Artifacts: h.artifacts,
		Extractor: h.extractor,
		Cleaner:   h.cleaner,
	}
}
