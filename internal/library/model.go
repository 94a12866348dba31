package library

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StreamType classifies a media stream.
type StreamType string

const (
	StreamVideo    StreamType = "Video"
	StreamAudio    StreamType = "Audio"
	StreamSubtitle StreamType = "Subtitle"
)

// ParseStreamType maps an index or ffprobe stream type onto StreamType.
// Unknown values are returned unchanged.
func ParseStreamType(value string) StreamType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "video":
		return StreamVideo
	case "audio":
		return StreamAudio
	case "subtitle":
		return StreamSubtitle
	default:
		return StreamType(strings.TrimSpace(value))
	}
}

// MediaStream describes one stream inside a media source.
type MediaStream struct {
	Index      int
	Type       StreamType
	Language   string
	Codec      string
	Title      string
	IsExternal bool
	// Path is set for external streams only.
	Path string
}

// IsSubtitle reports whether the stream carries subtitles.
func (s MediaStream) IsSubtitle() bool {
	return s.Type == StreamSubtitle
}

// MediaSource is one playable file belonging to an episode.
type MediaSource struct {
	ID        string
	EpisodeID EpisodeID
	Path      string
	Container string
	Streams   []MediaStream
}

// SubtitleStreams returns the subtitle streams in source order.
func (m MediaSource) SubtitleStreams() []MediaStream {
	out := make([]MediaStream, 0, len(m.Streams))
	for _, stream := range m.Streams {
		if stream.IsSubtitle() {
			out = append(out, stream)
		}
	}
	return out
}

// Episode is a library item of kind Episode with its media sources.
type Episode struct {
	ID         EpisodeID
	Name       string
	SeriesName string
	Sources    []MediaSource
}

// Label renders a short human-readable description for logs.
func (e Episode) Label() string {
	switch {
	case e.SeriesName != "" && e.Name != "":
		return fmt.Sprintf("%s - %s", e.SeriesName, e.Name)
	case e.Name != "":
		return e.Name
	default:
		return e.ID.String()
	}
}

// RootID identifies a library root (collection folder). AllRoots means the
// scan is not restricted to any root.
type RootID string

// AllRoots selects every library item.
const AllRoots RootID = ""

// String renders the root for logs.
func (r RootID) String() string {
	if r == AllRoots {
		return "all"
	}
	return string(r)
}

// EpisodeID is the stable UUID of an episode.
type EpisodeID struct {
	uuid.UUID
}

// ParseEpisodeID accepts dashed and 32-hex UUID forms.
func ParseEpisodeID(value string) (EpisodeID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return EpisodeID{}, fmt.Errorf("parse episode id %q: %w", value, err)
	}
	return EpisodeID{UUID: parsed}, nil
}

// MustParseEpisodeID is ParseEpisodeID for tests and constants; it panics on
// invalid input.
func MustParseEpisodeID(value string) EpisodeID {
	id, err := ParseEpisodeID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// NewEpisodeID returns a random identifier.
func NewEpisodeID() EpisodeID {
	return EpisodeID{UUID: uuid.New()}
}

// IsZero reports whether the identifier is unset.
func (id EpisodeID) IsZero() bool {
	return id.UUID == uuid.Nil
}

// String returns the canonical lowercase dashed form.
func (id EpisodeID) String() string {
	return id.UUID.String()
}

// Shard returns the first two characters of the canonical form.
func (id EpisodeID) Shard() string {
	return id.String()[:2]
}
