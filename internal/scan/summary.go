package scan

import (
	"time"

	"subsweep/internal/library"
)

// Summary describes one scan run.
type Summary struct {
	RunID      string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	Roots      []library.RootID
	Filter     string

	Total     int
	Seen      int
	Skipped   int
	Processed int
	Failed    int

	SubtitlesExtracted  int
	PlaceholdersWritten int
	PlaceholderFailures int

	Cancelled bool
	Progress  float64
}

// Duration returns the wall time of the run.
func (s Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// RootLabels renders the roots for logs and history rows.
func (s Summary) RootLabels() []string {
	out := make([]string, 0, len(s.Roots))
	for _, root := range s.Roots {
		out = append(out, root.String())
	}
	return out
}
