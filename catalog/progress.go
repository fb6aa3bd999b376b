package catalog

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how many program sources an index run has scanned.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	current   int
	entries   int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker for total sources writing to writer.
// A nil writer discards output.
func NewProgressTracker(writer io.Writer, total int) *ProgressTracker {
	if writer == nil {
		writer = io.Discard
	}
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
	p.entries = 0
}

// SourceDone records one scanned source and the entries it yielded.
func (p *ProgressTracker) SourceDone(entries int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = min(p.current+1, p.total)
	p.entries += entries
	p.report()
}

// Finish prints final progress.
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
	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rScanned %d/%d sources (%.1f%%) - %d programs",
		p.current, p.total, percentage, p.entries)
}
