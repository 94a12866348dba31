package jellyfin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsweep/internal/library"
	"subsweep/internal/services"
	"subsweep/internal/services/jellyfin"
)

const (
	episodeA = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	episodeB = "f0e1d2c3b4a5968778695a4b3c2d1e0f"
)

func newTestClient(t *testing.T, handler http.Handler) *jellyfin.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := jellyfin.NewClient(srv.URL+"/", "secret",
		jellyfin.WithHTTPClient(srv.Client()),
		jellyfin.WithRetry(3, time.Millisecond),
		jellyfin.WithRateLimit(0),
	)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := jellyfin.NewClient("http://localhost:8096", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrConfiguration)
}

func TestCountEpisodesSendsTokenAndFilters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Items", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Emby-Token"))
		q := r.URL.Query()
		assert.Equal(t, "Episode", q.Get("IncludeItemTypes"))
		assert.Equal(t, "true", q.Get("Recursive"))
		assert.Equal(t, "0", q.Get("Limit"))
		assert.Equal(t, "root-1", q.Get("ParentId"))
		_, _ = w.Write([]byte(`{"Items":[],"TotalRecordCount":612}`))
	}))

	total, err := client.CountEpisodes(context.Background(), library.RootID("root-1"))
	require.NoError(t, err)
	assert.Equal(t, 612, total)
}

func TestCountEpisodesUnrestrictedOmitsParent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["ParentId"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"TotalRecordCount":3}`))
	}))

	total, err := client.CountEpisodes(context.Background(), library.AllRoots)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestListEpisodesConvertsPayload(t *testing.T) {
	payload := `{"Items":[
	  {"Id":"` + episodeA + `","Name":"Pilot","SeriesName":"Show","Type":"Episode",
	   "MediaSources":[{"Id":"src1","Path":"/media/show/s01e01.mkv","Container":"mkv",
	     "MediaStreams":[
	       {"Index":0,"Type":"Video","Codec":"h264"},
	       {"Index":2,"Type":"Subtitle","Language":"spa","Codec":"SubRip","Title":"Español"},
	       {"Index":3,"Type":"Subtitle","Language":"eng","Codec":"subrip","IsExternal":true,"Path":"/media/show/s01e01.en.srt"}
	     ]}]},
	  {"Id":"not-a-uuid","Name":"Broken"},
	  {"Id":"` + episodeB + `","Name":"Second","Path":"/media/show/s01e02.mkv","Container":"mkv"}
	]}`
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "250", q.Get("StartIndex"))
		assert.Equal(t, "250", q.Get("Limit"))
		assert.Contains(t, q.Get("Fields"), "MediaSources")
		_, _ = w.Write([]byte(payload))
	}))

	episodes, err := client.ListEpisodes(context.Background(), library.AllRoots, 250, 250)
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	first := episodes[0]
	assert.Equal(t, episodeA, first.ID.String())
	assert.Equal(t, "Show - Pilot", first.Label())
	require.Len(t, first.Sources, 1)
	src := first.Sources[0]
	assert.Equal(t, "src1", src.ID)
	assert.Equal(t, first.ID, src.EpisodeID)
	subs := src.SubtitleStreams()
	require.Len(t, subs, 2)
	assert.Equal(t, "subrip", subs[0].Codec)
	assert.Equal(t, "spa", subs[0].Language)
	assert.True(t, subs[1].IsExternal)

	second := episodes[1]
	assert.Equal(t, library.MustParseEpisodeID(episodeB), second.ID)
	require.Len(t, second.Sources, 1, "item path becomes the fallback source")
	assert.Equal(t, "/media/show/s01e02.mkv", second.Sources[0].Path)
	assert.Empty(t, second.Sources[0].Streams)
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"TotalRecordCount":7}`))
	}))

	total, err := client.CountEpisodes(context.Background(), library.AllRoots)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.CountEpisodes(context.Background(), library.AllRoots)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTransient)
	assert.Equal(t, int32(3), calls.Load())
}

func TestUnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ListEpisodes(context.Background(), library.AllRoots, 0, 250)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrConfiguration)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCancelledContextStopsRequest(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CountEpisodes(ctx, library.AllRoots)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEpisodeLookup(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Ids") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"Items":[{"Id":"` + episodeA + `","Name":"Pilot"}]}`))
	}))

	ep, err := client.Episode(context.Background(), library.MustParseEpisodeID(episodeA))
	require.NoError(t, err)
	assert.Equal(t, "Pilot", ep.Name)
	assert.Empty(t, ep.Sources)
}

func TestEpisodeLookupNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Items":[]}`))
	}))

	_, err := client.Episode(context.Background(), library.MustParseEpisodeID(episodeA))
	assert.ErrorIs(t, err, services.ErrNotFound)
}
