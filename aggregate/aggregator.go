package aggregate

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/query"
)

const (
	// DefaultMaxResults is the number of rows the display shows.
	DefaultMaxResults = 6
	// DefaultPageFactor multiplies MaxResults to get the internal list cap.
	DefaultPageFactor = 4
)

// Publisher receives the ranked list after every accepted merge.
// Implementations must discard the update if token is cancelled by the
// time they hold their own lock.
type Publisher interface {
	Update(list []core.Candidate, token *query.Token)
}

// Aggregator merges source batches into a capped, ranked working list.
type Aggregator struct {
	publisher  Publisher
	filter     *IgnoreFilter
	maxResults int
	pageFactor int
	logger     *slog.Logger

	mu      sync.Mutex
	working []core.Candidate
}

var _ query.Merger = (*Aggregator)(nil)

// Option configures an Aggregator.
type Option func(*Aggregator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithMaxResults sets the number of displayed rows.
// Default is 6.
func WithMaxResults(n int) Option {
	return func(a *Aggregator) error {
		if n <= 0 {
			return fmt.Errorf("%w: max results %d", ErrInvalidLimit, n)
		}
		a.maxResults = n
		return nil
	}
}

// WithPageFactor sets how many pages of results are kept.
// Default is 4.
func WithPageFactor(n int) Option {
	return func(a *Aggregator) error {
		if n <= 0 {
			return fmt.Errorf("%w: page factor %d", ErrInvalidLimit, n)
		}
		a.pageFactor = n
		return nil
	}
}

// WithIgnoreRules installs ignore rules.
func WithIgnoreRules(rules []core.IgnoreRule) Option {
	return func(a *Aggregator) error {
		filter, err := NewIgnoreFilter(rules)
		if err != nil {
			return err
		}
		a.filter = filter
		return nil
	}
}

// NewAggregator creates an aggregator publishing to publisher.
func NewAggregator(publisher Publisher, opts ...Option) (*Aggregator, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}

	a := &Aggregator{
		publisher:  publisher,
		maxResults: DefaultMaxResults,
		pageFactor: DefaultPageFactor,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Capacity returns the internal list cap, MaxResults × PageFactor.
func (a *Aggregator) Capacity() int {
	return a.maxResults * a.pageFactor
}

// SetIgnoreRules replaces the ignore rules. Existing entries are filtered
// on the next merge.
func (a *Aggregator) SetIgnoreRules(rules []core.IgnoreRule) error {
	filter, err := NewIgnoreFilter(rules)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.filter = filter
	return nil
}

// Merge folds batches into the working list and publishes the result.
// Cancelled batches are dropped. If the remaining batches carry more than
// one distinct token, all of them are dropped.
func (a *Aggregator) Merge(batches ...query.Batch) {
	a.mu.Lock()
	defer a.mu.Unlock()

	live := make([]query.Batch, 0, len(batches))
	for _, b := range batches {
		if b.Token.Cancelled() {
			continue
		}
		live = append(live, b)
	}
	if len(live) == 0 {
		return
	}

	token := live[0].Token
	for _, b := range live[1:] {
		if b.Token != token {
			a.logger.Warn("dropping merge spanning multiple live generations",
				"first", token.Generation(),
				"other", b.Token.Generation(),
				"batches", len(live))
			return
		}
	}

	for _, b := range live {
		a.working = replaceSource(a.working, b.SourceID, b.Results)
	}

	if !a.filter.Empty() {
		a.working = a.filter.Apply(a.working)
	}

	slices.SortStableFunc(a.working, func(x, y core.Candidate) int {
		return cmp.Compare(y.Score, x.Score)
	})

	if limit := a.Capacity(); len(a.working) > limit {
		a.working = a.working[:limit]
	}

	a.logger.Debug("merged batches",
		"generation", token.Generation(),
		"batches", len(live),
		"results", len(a.working))

	// The store takes its own lock; never the other way round.
	a.publisher.Update(slices.Clone(a.working), token)
}

// Reset empties the working list without publishing.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.working = nil
}

// Working returns a copy of the current working list.
func (a *Aggregator) Working() []core.Candidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.working)
}

// replaceSource drops every entry of sourceID and appends results tagged
// with sourceID.
func replaceSource(list []core.Candidate, sourceID string, results []core.Candidate) []core.Candidate {
	out := make([]core.Candidate, 0, len(list)+len(results))
	for _, c := range list {
		if c.SourceID != sourceID {
			out = append(out, c)
		}
	}
	for _, c := range results {
		c.SourceID = sourceID
		out = append(out, c)
	}
	return out
}
