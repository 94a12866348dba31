// Package services defines shared utilities consumed by the scanner and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and trigger names for
//     logging and history.
//   - Structured error markers plus the Wrap helper so failures from the
//     library index, ffmpeg and the filesystem classify consistently
//     (retryable vs permanent, metric labels).
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability, retries) stays uniform across the scanner.
package services
