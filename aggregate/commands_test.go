package aggregate

import (
	"context"
	"testing"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandSource(t *testing.T) {
	ran := false
	reindex := ReindexCommand(func() error {
		ran = true
		return nil
	})

	src, err := NewCommandSource(match.NewFuzzyScorer(), reindex)
	require.NoError(t, err)

	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, CommandSourceID, src.ID())
		assert.True(t, src.Enabled())
		src.SetEnabled(false)
		assert.False(t, src.Enabled())
		src.SetEnabled(true)
	})

	t.Run("matching command", func(t *testing.T) {
		results, err := src.Search(context.Background(), "reindex")
		require.NoError(t, err)
		require.Len(t, results, 1)

		c := results[0]
		assert.Equal(t, "Reindex Programs", c.Title)
		assert.Equal(t, core.IconCommand, c.IconRef)
		assert.Equal(t, CommandSourceID, c.SourceID)
		assert.Positive(t, c.Score)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, c.TitleSpans)

		cmd, ok := c.Payload.(*core.Command)
		require.True(t, ok)
		require.NoError(t, cmd.Run())
		assert.True(t, ran)
	})

	t.Run("no match", func(t *testing.T) {
		results, err := src.Search(context.Background(), "zzz")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		results, err := src.Search(ctx, "reindex")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("nil scorer", func(t *testing.T) {
		_, err := NewCommandSource(nil)
		assert.Equal(t, ErrScorerRequired, err)
	})
}
