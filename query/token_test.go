package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	t.Run("fresh token is live", func(t *testing.T) {
		tok := NewToken(context.Background(), 1, "chr")
		assert.False(t, tok.Cancelled())
		assert.Equal(t, uint64(1), tok.Generation())
		assert.Equal(t, "chr", tok.Query())
		assert.NoError(t, tok.Context().Err())
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		tok := NewToken(context.Background(), 2, "x")
		tok.Cancel()
		tok.Cancel()
		assert.True(t, tok.Cancelled())
		assert.ErrorIs(t, tok.Context().Err(), context.Canceled)
	})

	t.Run("cancelled parent cancels token", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		tok := NewToken(parent, 3, "x")
		cancel()
		assert.True(t, tok.Cancelled())
	})

	t.Run("nil token counts as cancelled", func(t *testing.T) {
		var tok *Token
		assert.True(t, tok.Cancelled())
	})
}
