package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerZeroTotalRootKeepsValue(t *testing.T) {
	var got []float64
	tr := newProgressTracker(2, func(p float64) { got = append(got, p) })

	tr.beginRoot(0)
	tr.beginRoot(2)
	tr.advance()
	tr.advance()
	tr.finish()

	assert.InDeltaSlice(t, []float64{25, 50, 100}, got, 0.001)
}

func TestProgressTrackerNilReporter(t *testing.T) {
	tr := newProgressTracker(0, nil)
	tr.beginRoot(1)
	assert.Equal(t, 100.0, tr.advance())
}
