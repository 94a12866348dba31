// Package jellyfin is the library index used by the scanner.
//
// Client talks to the Jellyfin HTTP API with an API key (X-Emby-Token). It
// resolves library names to their root folder ids, counts and pages episode
// items with their media sources and streams, and converts the payloads into
// the library domain model. Requests are throttled with a token bucket and
// transient failures (network errors, 429, 5xx) are retried with backoff.
package jellyfin
