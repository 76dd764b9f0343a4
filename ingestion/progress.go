package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how many cases of an import have been written.
type ProgressTracker struct {
	writer       io.Writer
	label        string
	total        int
	current      int
	every        int
	lastReported int
	startTime    time.Time
	started      bool
	mu           sync.Mutex
}

// NewProgressTracker creates a tracker for total cases that writes a status
// line to writer every `every` cases. A nil writer discards output.
func NewProgressTracker(writer io.Writer, label string, total, every int) *ProgressTracker {
	if writer == nil {
		writer = io.Discard
	}
	if every < 1 {
		every = 1
	}
	return &ProgressTracker{
		writer: writer,
		label:  label,
		total:  total,
		every:  every,
	}
}

// Start resets the counters and starts the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Add records n more written cases. It is safe to pass as a storage
// progress callback.
func (p *ProgressTracker) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = min(p.current+n, p.total)
	if p.current-p.lastReported >= p.every {
		p.report()
		p.lastReported = p.current
	}
}

// Current returns the number of cases recorded so far.
func (p *ProgressTracker) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish prints the final line.
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

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\r%s: %d/%d cases (%.1f%%) - %.1f cases/s",
		p.label, p.current, p.total, percentage, rate)
}
