package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyScorer(t *testing.T) {
	s := NewFuzzyScorer()

	t.Run("prefix match scores and highlights", func(t *testing.T) {
		score, spans := s.Score("chr", "Chrome")
		assert.Greater(t, score, 0)
		assert.Equal(t, []int{0, 1, 2}, spans)
	})

	t.Run("no match", func(t *testing.T) {
		score, spans := s.Score("chr", "Notepad")
		assert.Zero(t, score)
		assert.Nil(t, spans)
	})

	t.Run("empty query never matches", func(t *testing.T) {
		score, _ := s.Score("", "Chrome")
		assert.Zero(t, score)
	})

	t.Run("empty text never matches", func(t *testing.T) {
		score, _ := s.Score("a", "")
		assert.Zero(t, score)
	})

	t.Run("tighter match ranks higher", func(t *testing.T) {
		exact, _ := s.Score("chrome", "chrome")
		scattered, _ := s.Score("chrome", "cache hierarchy remote")
		assert.Greater(t, exact, scattered)
	})

	t.Run("spans are rune offsets", func(t *testing.T) {
		score, spans := s.Score("app", "naïve app")
		assert.Greater(t, score, 0)
		assert.Equal(t, []int{6, 7, 8}, spans)
	})

	t.Run("pure and repeatable", func(t *testing.T) {
		a, as := s.Score("fx", "Firefox")
		b, bs := s.Score("fx", "Firefox")
		assert.Equal(t, a, b)
		assert.Equal(t, as, bs)
	})
}

func TestBest(t *testing.T) {
	s := ScorerFunc(func(query, text string) (int, []int) {
		if text == query {
			return 50, []int{0}
		}
		if text != "" {
			return 1, nil
		}
		return 0, nil
	})

	score, spans, field := Best(s, "vim", "gvim", "vim")
	assert.Equal(t, 50, score)
	assert.Equal(t, []int{0}, spans)
	assert.Equal(t, 1, field)

	score, _, field = Best(s, "vim", "", "")
	assert.Zero(t, score)
	assert.Equal(t, -1, field)
}
