// Package main hosts the subsweep CLI entrypoint and command graph.
//
// The Cobra command tree wires configuration, logging, the Jellyfin index,
// the ffmpeg extractor and the artifact store into a scan pipeline, then
// exposes it as a one-shot `scan`, a scheduled `daemon` with a metrics
// endpoint, and the `check`, `history` and `config` utilities.
//
// Keep this package lean: behaviour lives in internal packages and commands
// only translate flags into calls and results into terminal output.
package main
