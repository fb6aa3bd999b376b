package query

import "time"

// Monitor provides hooks to observe query fan-out.
// Implement this interface to trace generations and per-source latency.
// Hooks are called from worker goroutines and must be safe for concurrent use.
type Monitor interface {
	Submitted(generation uint64, text string)
	Superseded(generation uint64)
	SourceSkipped(generation uint64, sourceID string)
	SourceFinished(generation uint64, sourceID string, count int, elapsed time.Duration, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Submitted(_ uint64, _ string) {}
func (n *noopMonitor) Superseded(_ uint64) {}
func (n *noopMonitor) SourceSkipped(_ uint64, _ string) {}
func (n *noopMonitor) SourceFinished(_ uint64, _ string, _ int, _ time.Duration, _ error) {}
