// Package library holds the media library domain model shared by the index
// client, the artifact store and the scan orchestrator: episodes, their media
// sources and the streams inside each source.
package library
