package query

import (
	"context"

	"github.com/poiesic/launchit/core"
)

// Source is a data provider queried on every keystroke.
// Implementations must be safe for concurrent use: a superseded search may
// still be running when the next one starts.
type Source interface {
	// ID returns the stable identifier used for replace-by-source merging.
	ID() string

	// Enabled reports whether the source should take part in fan-out.
	Enabled() bool

	// Search returns scored candidates for text.
	// Implementations check ctx before expensive work and once per
	// candidate, returning promptly (partial or empty) once it is done.
	// Cancellation is not an error: return what you have and a nil error.
	Search(ctx context.Context, text string) ([]core.Candidate, error)
}

// Batch is the output of one source invocation for one generation.
type Batch struct {
	SourceID string
	Results  []core.Candidate
	Token    *Token
}

// Merger consumes batches as sources finish.
type Merger interface {
	Merge(batches ...Batch)
}

// MergerFunc adapts a plain function to the Merger interface.
type MergerFunc func(batches ...Batch)

// Merge implements Merger.
func (f MergerFunc) Merge(batches ...Batch) {
	f(batches...)
}
