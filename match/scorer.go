package match

import "github.com/sahilm/fuzzy"

// Scorer rates how well text matches a query.
// Implementations must be pure and safe for concurrent use.
type Scorer interface {
	// Score returns a positive score and highlight rune offsets when text
	// matches query, or 0 and nil otherwise.
	Score(query, text string) (int, []int)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(query, text string) (int, []int)

// Score implements Scorer.
func (f ScorerFunc) Score(query, text string) (int, []int) {
	return f(query, text)
}

// DefaultBaseScore lifts fuzzy scores, which carry penalties and may be
// negative, into the positive range so every match outranks a non-match.
const DefaultBaseScore = 100

// FuzzyScorer scores subsequence matches with sahilm/fuzzy.
// Matches are case-insensitive and reward word starts, camel case humps
// and runs of adjacent characters.
type FuzzyScorer struct {
	base int
}

var _ Scorer = (*FuzzyScorer)(nil)

// NewFuzzyScorer creates a fuzzy scorer with the default base score.
func NewFuzzyScorer() *FuzzyScorer {
	return &FuzzyScorer{base: DefaultBaseScore}
}

// Score implements Scorer.
func (s *FuzzyScorer) Score(query, text string) (int, []int) {
	if query == "" || text == "" {
		return 0, nil
	}
	matches := fuzzy.FindNoSort(query, []string{text})
	if len(matches) == 0 {
		return 0, nil
	}
	m := matches[0]
	score := m.Score + s.base
	if score < 1 {
		score = 1
	}
	return score, runeOffsets(text, m.MatchedIndexes)
}

// runeOffsets converts byte offsets reported by fuzzy into rune offsets.
func runeOffsets(text string, byteOffsets []int) []int {
	if len(byteOffsets) == 0 {
		return nil
	}
	spans := make([]int, 0, len(byteOffsets))
	next := 0
	runeIdx := 0
	for byteIdx := range text {
		if next >= len(byteOffsets) {
			break
		}
		if byteIdx == byteOffsets[next] {
			spans = append(spans, runeIdx)
			next++
		}
		runeIdx++
	}
	return spans
}

// Best scores every field and returns the highest score with its spans
// and the index of the winning field. It returns index -1 when nothing matched.
func Best(s Scorer, query string, fields ...string) (score int, spans []int, field int) {
	field = -1
	for i, f := range fields {
		sc, sp := s.Score(query, f)
		if sc > score {
			score, spans, field = sc, sp, i
		}
	}
	return score, spans, field
}
