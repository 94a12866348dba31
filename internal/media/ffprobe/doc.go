// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties and tags
//   - Prober: fills in stream metadata for media sources the library index
//     reported without it
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
