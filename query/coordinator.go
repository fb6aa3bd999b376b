package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/launchit/core"
)

// Coordinator owns the current generation token and fans queries out to sources.
type Coordinator struct {
	sources  []Source
	merger   Merger
	pool     *ants.Pool
	poolSize int
	base     context.Context
	monitor  Monitor
	logger   *slog.Logger

	mu         sync.Mutex
	current    *Token
	generation uint64
	closed     bool

	// inflight counts dispatches and searches not yet merged, guarded by mu.
	inflight int
	idle     *sync.Cond
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithPoolSize bounds the number of concurrently running source searches.
// Default is 0, an unbounded pool: stale searches that are slow to notice
// cancellation never delay the newest generation.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 0 {
			size = 0
		}
		c.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithMonitor installs fan-out hooks.
func WithMonitor(monitor Monitor) Option {
	return func(c *Coordinator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		c.monitor = monitor
		return nil
	}
}

// WithBaseContext sets the parent of every generation context.
// Cancelling it cancels all generations.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Coordinator) error {
		if ctx == nil {
			ctx = context.Background()
		}
		c.base = ctx
		return nil
	}
}

// NewCoordinator creates a coordinator dispatching to sources and merging into merger.
func NewCoordinator(merger Merger, sources []Source, opts ...Option) (*Coordinator, error) {
	if merger == nil {
		return nil, ErrMergerRequired
	}

	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		if seen[src.ID()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSourceID, src.ID())
		}
		seen[src.ID()] = true
	}

	c := &Coordinator{
		sources: append([]Source(nil), sources...),
		merger:  merger,
		base:    context.Background(),
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}
	c.idle = sync.NewCond(&c.mu)

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(c.poolSize)
	if err != nil {
		return nil, err
	}
	c.pool = pool

	return c, nil
}

// Submit starts a new generation for text and returns its token.
// The previous token is cancelled before the new one becomes current.
func (c *Coordinator) Submit(text string) *Token {
	c.mu.Lock()
	if c.current != nil {
		c.current.Cancel()
		c.monitor.Superseded(c.current.Generation())
	}
	c.generation++
	token := NewToken(c.base, c.generation, text)
	c.current = token
	closed := c.closed
	if !closed {
		// Held until dispatch ends so Close never releases the pool under it
		c.inflight++
	}
	c.mu.Unlock()

	if closed {
		token.Cancel()
		return token
	}
	defer c.finished()

	c.logger.Debug("query submitted", "generation", token.Generation(), "query", text)
	c.monitor.Submitted(token.Generation(), text)
	c.dispatch(token)
	return token
}

// Abort cancels the current generation without starting a new one.
func (c *Coordinator) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.Cancel()
	}
}

// Current returns the live token, or nil if none was ever submitted.
// The returned token may already be cancelled after Abort.
func (c *Coordinator) Current() *Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Wait blocks until every dispatched search has been merged.
// It may run concurrently with Submit; it then also waits for the
// searches those submissions start.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
}

// Close aborts the current generation, waits for running searches and
// releases the worker pool. Submit after Close returns a cancelled token.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.current != nil {
		c.current.Cancel()
	}
	c.mu.Unlock()

	c.Wait()
	c.pool.Release()
}

// dispatch submits one task per enabled source.
func (c *Coordinator) dispatch(token *Token) {
	for _, src := range c.sources {
		if !src.Enabled() {
			c.monitor.SourceSkipped(token.Generation(), src.ID())
			continue
		}

		c.started()
		err := c.pool.Submit(func() {
			defer c.finished()
			c.run(token, src)
		})
		if err != nil {
			c.finished()
			c.logger.Error("error dispatching source search", "source", src.ID(), "generation", token.Generation(), "err", err)
		}
	}
}

func (c *Coordinator) started() {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
}

func (c *Coordinator) finished() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		c.idle.Broadcast()
	}
	c.mu.Unlock()
}

// run performs one source search and forwards its batch.
func (c *Coordinator) run(token *Token, src Source) {
	if token.Cancelled() {
		return
	}

	start := time.Now()
	results, err := c.search(token, src)
	elapsed := time.Since(start)

	switch {
	case err == nil:
	case token.Cancelled() && errors.Is(err, context.Canceled):
		// Superseded; the batch is discarded downstream.
		err = nil
	default:
		c.logger.Warn("source search failed", "source", src.ID(), "generation", token.Generation(), "err", err)
		results = nil
	}

	c.monitor.SourceFinished(token.Generation(), src.ID(), len(results), elapsed, err)
	c.merger.Merge(Batch{SourceID: src.ID(), Results: results, Token: token})
}

// search invokes the source, converting panics into errors.
func (c *Coordinator) search(token *Token, src Source) (results []core.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("%w: %s: %v", ErrSourcePanicked, src.ID(), r)
		}
	}()
	return src.Search(token.Context(), token.Query())
}
