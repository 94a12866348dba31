package subtitles

import (
	"fmt"

	"subsweep/internal/library"
	"subsweep/internal/services"
)

// PathResolver maps a subtitle stream to the file its extraction lives in.
type PathResolver interface {
	ResolveSubtitleFilePath(stream library.MediaStream, source library.MediaSource) (string, error)
}

// ResolveSubtitleFilePath returns the artifact path for stream. External
// streams and image codecs resolve to ErrNotExtractable.
func (e *Extractor) ResolveSubtitleFilePath(stream library.MediaStream, source library.MediaSource) (string, error) {
	format, err := e.formatFor(stream, source)
	if err != nil {
		return "", err
	}
	return e.layout.File(source.EpisodeID, outputName(source.ID, stream.Index, format)), nil
}

func (e *Extractor) formatFor(stream library.MediaStream, source library.MediaSource) (outputFormat, error) {
	if source.EpisodeID.IsZero() {
		return outputFormat{}, services.Wrap(services.ErrValidation, "subtitles", "resolve", "media source "+source.ID+" has no episode id", nil)
	}
	if !stream.IsSubtitle() {
		return outputFormat{}, services.Wrap(services.ErrValidation, "subtitles", "resolve", fmt.Sprintf("stream %d is %s, not a subtitle", stream.Index, stream.Type), nil)
	}
	if stream.IsExternal {
		return outputFormat{}, services.Wrap(services.ErrNotExtractable, "subtitles", "resolve", fmt.Sprintf("stream %d is an external file", stream.Index), nil)
	}
	format, ok := formatFor(stream.Codec)
	if !ok {
		return outputFormat{}, services.Wrap(services.ErrNotExtractable, "subtitles", "resolve", fmt.Sprintf("stream %d codec %q is not a text format", stream.Index, stream.Codec), nil)
	}
	return format, nil
}
