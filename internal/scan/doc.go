// Package scan walks a media library and brings every episode's subtitle
// artifacts up to date.
//
// The Orchestrator resolves the configured libraries to roots (falling back to
// an unrestricted scan when none resolve), pages each root's episodes, skips
// episodes whose artifact directory already holds a non-empty file, and for
// the rest extracts every text subtitle and replaces the unwanted ones with
// placeholders. Progress is reported across roots with equal weight per root
// and never moves backwards.
//
// Collaborators are consumer-side interfaces so the package depends on no
// transport or filesystem; cmd/subsweep wires Jellyfin, ffmpeg and the
// artifact store in.
package scan
