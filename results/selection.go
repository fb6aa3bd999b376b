package results

import (
	"log/slog"
	"sync"
)

// Scheduler runs fn at the next scheduling opportunity.
type Scheduler func(fn func())

// GoScheduler runs fn on a new goroutine.
func GoScheduler(fn func()) {
	go fn()
}

// Selection tracks the highlighted row of a Store.
type Selection struct {
	store    *Store
	schedule Scheduler
	logger   *slog.Logger

	mu             sync.Mutex
	index          int
	listGeneration uint64
	pending        bool
	pendingSeq     uint64
	observers      map[uint64]func(int)
	nextID         uint64

	unsubscribe func()
}

// SelectionOption configures a Selection.
type SelectionOption func(*Selection) error

// WithScheduler sets how pending resets are run.
// Default is GoScheduler.
func WithScheduler(schedule Scheduler) SelectionOption {
	return func(s *Selection) error {
		if schedule == nil {
			schedule = GoScheduler
		}
		s.schedule = schedule
		return nil
	}
}

// WithSelectionLogger sets a custom logger.
// Default is slog.Default().
func WithSelectionLogger(logger *slog.Logger) SelectionOption {
	return func(s *Selection) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSelection creates a selection following store.
func NewSelection(store *Store, opts ...SelectionOption) (*Selection, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Selection{
		store:     store,
		schedule:  GoScheduler,
		logger:    slog.Default(),
		index:     -1,
		observers: make(map[uint64]func(int)),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if store.Len() > 0 {
		s.index = 0
	}
	s.listGeneration = store.Generation()
	s.unsubscribe = store.Subscribe(s.listReplaced)
	return s, nil
}

// Close detaches the selection from its store.
func (s *Selection) Close() {
	s.unsubscribe()
}

// CurrentIndex returns the highlighted row, or -1 when the list is empty.
func (s *Selection) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clamp(s.index, s.store.Len())
}

// Pending reports whether a reset is scheduled but not yet applied.
func (s *Selection) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// MoveBy moves delta rows, wrapping around the ends.
func (s *Selection) MoveBy(delta int) int {
	return s.navigate(func(index, n int) int {
		return ((index+delta%n)%n + n) % n
	})
}

// MoveByPage moves pageSize rows, stopping at the ends.
func (s *Selection) MoveByPage(pageSize int) int {
	return s.navigate(func(index, n int) int {
		if index < 0 {
			index = 0
		}
		// Bounded first so the sum cannot overflow
		pageSize = min(max(pageSize, -n), n)
		return min(max(index+pageSize, 0), n-1)
	})
}

// MoveToFirst selects the first row.
func (s *Selection) MoveToFirst() int {
	return s.navigate(func(int, int) int {
		return 0
	})
}

// OnChange registers fn for selection changes.
func (s *Selection) OnChange(fn func(int)) (unsubscribe func()) {
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

// navigate applies a user move. It cancels any pending reset.
func (s *Selection) navigate(move func(index, n int) int) int {
	s.mu.Lock()
	n := s.store.Len()
	s.pending = false

	next := -1
	if n > 0 {
		next = move(s.index, n)
	}
	changed := next != s.index
	s.index = next
	observers := s.observerList()
	s.mu.Unlock()

	if changed {
		notifyIndex(observers, next)
	}
	return next
}

// listReplaced handles a store notification.
func (s *Selection) listReplaced() {
	s.mu.Lock()
	n := s.store.Len()
	s.listGeneration = s.store.Generation()
	s.index = clamp(s.index, n)
	s.pending = true
	s.pendingSeq++
	seq := s.pendingSeq
	s.mu.Unlock()

	s.schedule(func() {
		s.applyReset(seq)
	})
}

// applyReset selects the first row unless navigation or a newer
// notification got there first.
func (s *Selection) applyReset(seq uint64) {
	s.mu.Lock()
	if !s.pending || seq != s.pendingSeq {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.index = clamp(0, s.store.Len())
	index := s.index
	list := s.listGeneration
	observers := s.observerList()
	s.mu.Unlock()

	s.logger.Debug("selection reset", "list", list, "index", index)
	notifyIndex(observers, index)
}

// observerList copies the observers. Caller holds s.mu.
func (s *Selection) observerList() []func(int) {
	out := make([]func(int), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notifyIndex(observers []func(int), index int) {
	for _, fn := range observers {
		fn(index)
	}
}

// clamp bounds index to [0, n-1], or -1 when n is zero.
func clamp(index, n int) int {
	if n == 0 {
		return -1
	}
	return min(max(index, 0), n-1)
}
