package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/query"
	"github.com/poiesic/launchit/sources/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps the last accepted list.
type recordingPublisher struct {
	mu      sync.Mutex
	updates int
	last    []core.Candidate
}

func (p *recordingPublisher) Update(list []core.Candidate, token *query.Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token.Cancelled() {
		return
	}
	p.updates++
	p.last = list
}

func titles(list []core.Candidate) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Title
	}
	return out
}

func TestNewAggregator(t *testing.T) {
	pub := &recordingPublisher{}

	t.Run("valid configuration", func(t *testing.T) {
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		assert.Equal(t, 24, a.Capacity())
	})

	t.Run("with options", func(t *testing.T) {
		a, err := NewAggregator(pub,
			WithLogger(slog.Default()),
			WithMaxResults(10),
			WithPageFactor(2),
			WithIgnoreRules([]core.IgnoreRule{{Pattern: "uninstall"}}))
		require.NoError(t, err)
		assert.Equal(t, 20, a.Capacity())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		_, err := NewAggregator(pub, WithLogger(nil))
		require.NoError(t, err)
	})

	t.Run("nil publisher", func(t *testing.T) {
		_, err := NewAggregator(nil)
		assert.Equal(t, ErrPublisherRequired, err)
	})

	t.Run("invalid limits", func(t *testing.T) {
		_, err := NewAggregator(pub, WithMaxResults(0))
		assert.ErrorIs(t, err, ErrInvalidLimit)
		_, err = NewAggregator(pub, WithPageFactor(-1))
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})

	t.Run("invalid ignore rule", func(t *testing.T) {
		_, err := NewAggregator(pub, WithIgnoreRules([]core.IgnoreRule{{Pattern: "(", IsRegex: true}}))
		assert.ErrorIs(t, err, core.ErrBadPattern)
	})
}

func TestAggregatorMerge(t *testing.T) {
	t.Run("union of latest batch per source", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		tok := query.NewToken(context.Background(), 1, "x")

		a.Merge(query.Batch{SourceID: "a", Results: mock.Results("a", 3, 90), Token: tok})
		a.Merge(query.Batch{SourceID: "b", Results: mock.Results("b", 5, 80), Token: tok})
		require.Len(t, pub.last, 8)
		assert.Equal(t, 2, pub.updates)

		a.Merge(query.Batch{SourceID: "a", Results: mock.Results("a", 1, 10), Token: tok})
		require.Len(t, pub.last, 6)
		count := 0
		for _, c := range pub.last {
			if c.SourceID == "a" {
				count++
				assert.Equal(t, 10, c.Score)
			}
		}
		assert.Equal(t, 1, count)
		assert.Equal(t, "a-a", pub.last[len(pub.last)-1].Title)
	})

	t.Run("ranking is stable for equal scores", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		tok := query.NewToken(context.Background(), 1, "x")

		a.Merge(query.Batch{SourceID: "first", Results: []core.Candidate{{Title: "x", Score: 50}}, Token: tok})
		a.Merge(query.Batch{SourceID: "second", Results: []core.Candidate{{Title: "y", Score: 50}, {Title: "z", Score: 70}}, Token: tok})

		assert.Equal(t, []string{"z", "x", "y"}, titles(pub.last))
	})

	t.Run("list is capped", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		tok := query.NewToken(context.Background(), 1, "x")

		a.Merge(query.Batch{SourceID: "a", Results: mock.Results("a", 30, 100), Token: tok})
		require.Len(t, pub.last, 24)
		assert.Equal(t, 100, pub.last[0].Score)
		assert.Equal(t, 77, pub.last[23].Score)
	})

	t.Run("cancelled batch is discarded", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		tok := query.NewToken(context.Background(), 1, "x")
		tok.Cancel()

		a.Merge(query.Batch{SourceID: "a", Results: mock.Results("a", 3, 90), Token: tok})
		assert.Equal(t, 0, pub.updates)
		assert.Empty(t, a.Working())
	})

	t.Run("multiple live generations are dropped", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		t1 := query.NewToken(context.Background(), 1, "x")
		t2 := query.NewToken(context.Background(), 2, "y")

		a.Merge(
			query.Batch{SourceID: "a", Results: mock.Results("a", 3, 90), Token: t1},
			query.Batch{SourceID: "b", Results: mock.Results("b", 3, 90), Token: t2},
		)
		assert.Equal(t, 0, pub.updates)
		assert.Empty(t, a.Working())
	})

	t.Run("cancelled batches do not count as a second generation", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		stale := query.NewToken(context.Background(), 1, "x")
		stale.Cancel()
		live := query.NewToken(context.Background(), 2, "y")

		a.Merge(
			query.Batch{SourceID: "a", Results: mock.Results("a", 3, 90), Token: stale},
			query.Batch{SourceID: "b", Results: mock.Results("b", 2, 90), Token: live},
		)
		assert.Equal(t, 1, pub.updates)
		assert.Len(t, pub.last, 2)
	})

	t.Run("ignore rules hide matching candidates", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub, WithIgnoreRules([]core.IgnoreRule{
			{Pattern: "UNINSTALL"},
			{Pattern: `^Help`, IsRegex: true},
		}))
		require.NoError(t, err)
		tok := query.NewToken(context.Background(), 1, "x")

		a.Merge(query.Batch{SourceID: "a", Token: tok, Results: []core.Candidate{
			{Title: "Chrome", Subtitle: "/usr/bin/chrome", Score: 90},
			{Title: "Remove", Subtitle: "/opt/app/uninstall.sh", Score: 80},
			{Title: "Help Center", Score: 70},
			{Title: "Get help", Score: 60},
		}})
		assert.Equal(t, []string{"Chrome", "Get help"}, titles(pub.last))
	})

	t.Run("empty batch removes the source", func(t *testing.T) {
		pub := &recordingPublisher{}
		a, err := NewAggregator(pub)
		require.NoError(t, err)
		tok := query.NewToken(context.Background(), 1, "x")

		a.Merge(query.Batch{SourceID: "a", Results: mock.Results("a", 3, 90), Token: tok})
		a.Merge(query.Batch{SourceID: "a", Token: tok})
		assert.Empty(t, pub.last)
		assert.Equal(t, 2, pub.updates)
	})
}

func TestAggregatorReset(t *testing.T) {
	pub := &recordingPublisher{}
	a, err := NewAggregator(pub)
	require.NoError(t, err)
	tok := query.NewToken(context.Background(), 1, "x")

	a.Merge(query.Batch{SourceID: "a", Results: mock.Results("a", 3, 90), Token: tok})
	require.Len(t, a.Working(), 3)

	a.Reset()
	assert.Empty(t, a.Working())
	assert.Equal(t, 1, pub.updates)
}

func TestAggregatorSetIgnoreRules(t *testing.T) {
	pub := &recordingPublisher{}
	a, err := NewAggregator(pub)
	require.NoError(t, err)

	assert.Error(t, a.SetIgnoreRules([]core.IgnoreRule{{Pattern: ""}}))
	require.NoError(t, a.SetIgnoreRules([]core.IgnoreRule{{Pattern: "b-"}}))

	tok := query.NewToken(context.Background(), 1, "x")
	a.Merge(query.Batch{SourceID: "a", Results: mock.Results("a", 2, 90), Token: tok})
	a.Merge(query.Batch{SourceID: "b", Results: mock.Results("b", 2, 90), Token: tok})
	assert.Equal(t, []string{"a-a", "a-b"}, titles(pub.last))
}
