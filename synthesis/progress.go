package synthesis

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"
)

// ProgressFunc receives the fraction of groups that reached a terminal
// state. Calls are serialized and the value never decreases.
type ProgressFunc func(fraction float64)

// ProgressTracker writes a single-line progress report to a writer.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	current   int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker for total groups.
// writer is typically os.Stderr.
func NewProgressTracker(writer io.Writer, total int) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		total:  total,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
}

// Update sets the number of completed groups and reports it.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	if current > p.total {
		current = p.total
	}
	if current < p.current {
		return
	}
	p.current = current
	p.report()
}

// Callback adapts the tracker to a ProgressFunc.
func (p *ProgressTracker) Callback() ProgressFunc {
	return func(fraction float64) {
		p.Update(int(math.Round(fraction * float64(p.total))))
	}
}

// Finish marks the operation as complete and prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.current) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rSynthesizing: %d/%d groups (%.1f%%) - %.2f groups/s",
		p.current, p.total, percentage, rate)
}
