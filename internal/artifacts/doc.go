// Package artifacts owns the on-disk subtitle tree.
//
// Extracted subtitles for an episode live in a sharded directory:
//
//	<root>/<first two characters of the episode id>/<episode id>/
//
// Layout is the single place that derives those paths; the extractor, the
// cleaner and the presence check all receive the same Layout value. Store adds
// filesystem operations on top of it through afero so tests run in memory.
package artifacts
