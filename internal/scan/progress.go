package scan

// progressTracker aggregates per-root completion into overall progress. Each
// root owns an equal share of the 0-100 range regardless of its size.
type progressTracker struct {
	report    ProgressFunc
	rootCount int
	start     float64
	last      float64
	total     int
	completed int
}

func newProgressTracker(rootCount int, report ProgressFunc) *progressTracker {
	if rootCount < 1 {
		rootCount = 1
	}
	if report == nil {
		report = func(float64) {}
	}
	return &progressTracker{report: report, rootCount: rootCount}
}

func (p *progressTracker) share() float64 {
	return 100 / float64(p.rootCount)
}

// beginRoot starts a root's share where the previous root left off.
func (p *progressTracker) beginRoot(total int) {
	p.start = p.last
	p.total = total
	p.completed = 0
}

// advance counts one finished episode and reports the new value.
func (p *progressTracker) advance() float64 {
	p.completed++
	value := p.start
	if p.total > 0 {
		value = p.start + p.share()*float64(p.completed)/float64(p.total)
	}
	value = min(value, p.start+p.share(), 100)
	value = max(value, p.last)
	p.last = value
	p.report(value)
	return value
}

func (p *progressTracker) finish() {
	p.last = 100
	p.report(100)
}
