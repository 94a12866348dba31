package subtitles

import (
	"regexp"
	"strconv"
	"strings"
)

type outputFormat struct {
	ext     string
	encoder string
}

// Text subtitle codecs ffmpeg can write to a sidecar file. Image codecs
// (pgs, dvd_subtitle, dvb_subtitle) need OCR and are not extractable.
var textCodecs = map[string]outputFormat{
	"subrip":   {ext: "srt", encoder: "srt"},
	"srt":      {ext: "srt", encoder: "srt"},
	"text":     {ext: "srt", encoder: "srt"},
	"mov_text": {ext: "srt", encoder: "srt"},
	"ass":      {ext: "ass", encoder: "ass"},
	"ssa":      {ext: "ssa", encoder: "ssa"},
	"webvtt":   {ext: "vtt", encoder: "webvtt"},
	"vtt":      {ext: "vtt", encoder: "webvtt"},
}

func formatFor(codec string) (outputFormat, bool) {
	f, ok := textCodecs[strings.ToLower(strings.TrimSpace(codec))]
	return f, ok
}

// IsTextCodec reports whether codec can be extracted to a text file.
func IsTextCodec(codec string) bool {
	_, ok := formatFor(codec)
	return ok
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9-]+`)

func sourceKey(id string) string {
	key := strings.Trim(unsafeKeyChars.ReplaceAllString(strings.TrimSpace(id), "_"), "_")
	if key == "" {
		return "source"
	}
	return strings.ToLower(key)
}

func outputName(sourceID string, index int, format outputFormat) string {
	return sourceKey(sourceID) + "_" + strconv.Itoa(index) + "." + format.ext
}
