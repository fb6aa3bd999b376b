package everything

import "strings"

// HighlightMarker toggles highlighting in index output.
const HighlightMarker = '*'

// ParseHighlight strips highlight markup from line and returns the plain
// text with the rune offsets of highlighted characters.
// "**" is not an escape: each marker simply toggles.
func ParseHighlight(line string) (string, []int) {
	if !strings.ContainsRune(line, HighlightMarker) {
		return line, nil
	}

	var b strings.Builder
	var spans []int
	on := false
	offset := 0
	for _, r := range line {
		if r == HighlightMarker {
			on = !on
			continue
		}
		if on {
			spans = append(spans, offset)
		}
		b.WriteRune(r)
		offset++
	}
	return b.String(), spans
}

// splitSpans divides path spans into those falling inside the final path
// element, rebased to it, given the rune offset where that element starts.
func splitSpans(spans []int, nameStart int) []int {
	var out []int
	for _, s := range spans {
		if s >= nameStart {
			out = append(out, s-nameStart)
		}
	}
	return out
}
