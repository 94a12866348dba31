// Package subtitles extracts embedded text subtitles with ffmpeg and replaces
// unwanted extractions with zero-byte placeholders.
//
// The Extractor writes every extractable subtitle stream of a media source
// into the episode's artifact directory and doubles as the PathResolver that
// the Cleaner uses, so both agree on where a stream's file lives. Existing
// files, placeholders included, are never regenerated.
package subtitles
