package results

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/query"
)

// Store is the published, display-facing result list.
type Store struct {
	logger *slog.Logger

	mu         sync.Mutex
	items      []core.Candidate
	generation uint64
	observers  map[uint64]func()
	nextID     uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets a custom logger.
// Default is slog.Default().
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		logger:    slog.Default(),
		observers: make(map[uint64]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update replaces the list with list if token is still live.
// Content-identical updates are ignored and emit nothing.
func (s *Store) Update(list []core.Candidate, token *query.Token) {
	s.mu.Lock()
	if token.Cancelled() {
		s.mu.Unlock()
		return
	}
	if sameContent(s.items, list) {
		s.mu.Unlock()
		return
	}
	s.items = slices.Clone(list)
	s.generation++
	generation := s.generation
	observers := s.observerList()
	s.mu.Unlock()

	s.logger.Debug("results replaced", "generation", token.Generation(), "list", generation, "count", len(list))
	notify(observers)
}

// Clear empties the list. Clearing an empty list emits nothing.
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return
	}
	s.items = nil
	s.generation++
	observers := s.observerList()
	s.mu.Unlock()

	notify(observers)
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() []core.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Len returns the number of results.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// At returns the result at index i.
func (s *Store) At(i int) (core.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return core.Candidate{}, false
	}
	return s.items[i], true
}

// Generation returns a counter incremented on every structural change.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Subscribe registers fn for structural-change notifications.
// fn runs on the updating goroutine after the store lock is released.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
		})
	}
}

// Watch streams snapshots until ctx is done. The current list is sent
// first. Slow readers only ever see the latest snapshot.
func (s *Store) Watch(ctx context.Context) <-chan []core.Candidate {
	w := &watcher{ch: make(chan []core.Candidate, 1)}

	// Subscribe before the first snapshot so no update falls in between;
	// offer drops whatever arrives twice or out of order.
	unsubscribe := s.Subscribe(func() {
		w.offer(s.versioned())
	})
	w.offer(s.versioned())

	go func() {
		<-ctx.Done()
		unsubscribe()
		w.close()
	}()

	return w.ch
}

// versioned returns a snapshot together with its generation.
func (s *Store) versioned() ([]core.Candidate, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), s.generation
}

// observerList copies the observers. Caller holds s.mu.
func (s *Store) observerList() []func() {
	out := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func()) {
	for _, fn := range observers {
		fn()
	}
}

func sameContent(a, b []core.Candidate) bool {
	return slices.EqualFunc(a, b, core.Candidate.SameContent)
}

// watcher is a latest-wins single-slot channel.
type watcher struct {
	mu     sync.Mutex
	ch     chan []core.Candidate
	last   uint64
	sent   bool
	closed bool
}

// offer replaces any unread snapshot. Snapshots older than the last one
// offered are dropped.
func (w *watcher) offer(list []core.Candidate, generation uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || (w.sent && generation <= w.last) {
		return
	}
	w.last = generation
	w.sent = true
	select {
	case <-w.ch:
	default:
	}
	w.ch <- list
}

func (w *watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	close(w.ch)
}
