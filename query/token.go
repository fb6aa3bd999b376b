package query

import (
	"context"
	"sync"
)

// Token identifies one query generation.
// It is one-shot: once cancelled it never becomes live again.
type Token struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	query      string
	once       sync.Once
}

// NewToken creates a live token derived from parent.
func NewToken(parent context.Context, generation uint64, query string) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{
		ctx:        ctx,
		cancel:     cancel,
		generation: generation,
		query:      query,
	}
}

// Context returns the context sources must poll.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Generation returns the token's sequence number.
func (t *Token) Generation() uint64 {
	return t.generation
}

// Query returns the query text the token was created for.
func (t *Token) Query() string {
	return t.query
}

// Cancel invalidates the token. Cancelling twice is a no-op.
func (t *Token) Cancel() {
	t.once.Do(t.cancel)
}

// Cancelled reports whether the token has been invalidated.
// A nil token counts as cancelled.
func (t *Token) Cancelled() bool {
	if t == nil {
		return true
	}
	return t.ctx.Err() != nil
}
