// Package metrics defines the Prometheus collectors exported by subsweep.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Episode outcome labels.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Scan metrics
var (
	EpisodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subsweep_episodes_total",
			Help: "Episodes visited by library scans, by outcome.",
		},
		[]string{"outcome"},
	)

	SubtitlesExtractedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subsweep_subtitles_extracted_total",
			Help: "Subtitle files written by ffmpeg.",
		},
	)

	PlaceholdersWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subsweep_placeholders_written_total",
			Help: "Unwanted subtitle files replaced with zero-byte placeholders.",
		},
	)

	ScanRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subsweep_scan_runs_total",
			Help: "Completed scan runs, by status.",
		},
		[]string{"status"},
	)

	ScanProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subsweep_scan_progress_percent",
			Help: "Progress of the scan in flight, 0 to 100.",
		},
	)

	ScanLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subsweep_scan_last_success_timestamp_seconds",
			Help: "Unix time of the last scan that completed without error.",
		},
	)

	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subsweep_scan_duration_seconds",
			Help:    "Wall time of scan runs.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(
		EpisodesTotal,
		SubtitlesExtractedTotal,
		PlaceholdersWrittenTotal,
		ScanRunsTotal,
		ScanProgress,
		ScanLastSuccess,
		ScanDuration,
	)
}
