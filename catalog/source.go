package catalog

import (
	"fmt"
	"strings"

	"github.com/poiesic/launchit/core"
)

// ParseProgramSource parses the edit syntax of a program source.
// A leading "!" limits the scan to the top directory; a following "*"
// also lists directories as entries. Sources are recursive otherwise.
func ParseProgramSource(text string) (core.ProgramSource, error) {
	src := core.ProgramSource{Recursive: true}
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "!"); ok {
		text = rest
		src.Recursive = false
	}
	if rest, ok := strings.CutPrefix(text, "*"); ok {
		text = rest
		src.ShowDirsAsEntry = true
	}
	if text == "" {
		return core.ProgramSource{}, ErrEmptySource
	}
	src.Location = text
	return src, nil
}

// ParseProgramSources parses every source, failing on the first invalid one.
func ParseProgramSources(texts []string) ([]core.ProgramSource, error) {
	out := make([]core.ProgramSource, 0, len(texts))
	for i, text := range texts {
		src, err := ParseProgramSource(text)
		if err != nil {
			return nil, fmt.Errorf("program source %d: %w", i, err)
		}
		out = append(out, src)
	}
	return out, nil
}

// FormatProgramSource renders src in edit syntax.
func FormatProgramSource(src core.ProgramSource) string {
	text := src.Location
	if src.ShowDirsAsEntry {
		text = "*" + text
	}
	if !src.Recursive {
		text = "!" + text
	}
	return text
}
