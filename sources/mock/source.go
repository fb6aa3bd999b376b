package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/poiesic/launchit/core"
)

// MockSource is a test double for query.Source.
// It allows custom behavior injection via function fields.
type MockSource struct {
	// SearchFunc is called by Search if set.
	// If nil, filters the static candidates.
	SearchFunc func(ctx context.Context, text string) ([]core.Candidate, error)

	id         string
	disabled   atomic.Bool
	candidates []core.Candidate

	callCount atomic.Int64

	mu      sync.Mutex
	queries []string
}

// NewMockSource creates an enabled mock source with static candidates.
func NewMockSource(id string, candidates ...core.Candidate) *MockSource {
	return &MockSource{id: id, candidates: candidates}
}

// WithSearchFunc sets a custom search function.
func (m *MockSource) WithSearchFunc(fn func(ctx context.Context, text string) ([]core.Candidate, error)) *MockSource {
	m.SearchFunc = fn
	return m
}

// SetEnabled toggles whether the coordinator dispatches to this source.
func (m *MockSource) SetEnabled(enabled bool) {
	m.disabled.Store(!enabled)
}

// ID returns the source ID.
func (m *MockSource) ID() string {
	return m.id
}

// Enabled reports whether the source is enabled.
func (m *MockSource) Enabled() bool {
	return !m.disabled.Load()
}

// Search records the query and returns candidates.
func (m *MockSource) Search(ctx context.Context, text string) ([]core.Candidate, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, text)
	}

	// Default: case-insensitive substring filter over the static list
	needle := strings.ToLower(text)
	var out []core.Candidate
	for _, c := range m.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(c.Title), needle) {
			c.SourceID = m.id
			out = append(out, c)
		}
	}
	return out, nil
}

// CallCount returns the number of times Search was called.
func (m *MockSource) CallCount() int {
	return int(m.callCount.Load())
}

// Queries returns the queries Search was called with, in call order.
func (m *MockSource) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Results builds n candidates for source id with descending scores starting at top.
func Results(id string, n int, top int) []core.Candidate {
	out := make([]core.Candidate, n)
	for i := range out {
		out[i] = core.Candidate{
			Title:    id + "-" + string(rune('a'+i%26)),
			Score:    top - i,
			SourceID: id,
		}
	}
	return out
}
