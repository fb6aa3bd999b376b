package aggregate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/launchit/core"
)

// IgnoreFilter hides candidates matched by user ignore rules.
// Literal rules match case-insensitively as substrings; regex rules use
// regexp semantics. A candidate is hidden when its title or its subtitle
// matches any rule.
type IgnoreFilter struct {
	literals []string
	patterns []*regexp.Regexp
}

// NewIgnoreFilter compiles rules. An invalid rule fails the whole filter.
func NewIgnoreFilter(rules []core.IgnoreRule) (*IgnoreFilter, error) {
	f := &IgnoreFilter{}
	for i, rule := range rules {
		if err := core.ValidateIgnoreRule(rule); err != nil {
			return nil, fmt.Errorf("ignore rule %d: %w", i, err)
		}
		if rule.IsRegex {
			// Validated above
			f.patterns = append(f.patterns, regexp.MustCompile(rule.Pattern))
			continue
		}
		f.literals = append(f.literals, strings.ToLower(rule.Pattern))
	}
	return f, nil
}

// Empty reports whether the filter has no rules.
func (f *IgnoreFilter) Empty() bool {
	return f == nil || (len(f.literals) == 0 && len(f.patterns) == 0)
}

// Ignored reports whether c should be hidden.
func (f *IgnoreFilter) Ignored(c core.Candidate) bool {
	if f.Empty() {
		return false
	}
	return f.matches(c.Title) || f.matches(c.Subtitle)
}

func (f *IgnoreFilter) matches(text string) bool {
	if text == "" {
		return false
	}
	if len(f.literals) > 0 {
		lower := strings.ToLower(text)
		for _, lit := range f.literals {
			if strings.Contains(lower, lit) {
				return true
			}
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Apply returns the candidates of list that are not ignored, in order.
// The input slice is not modified.
func (f *IgnoreFilter) Apply(list []core.Candidate) []core.Candidate {
	out := make([]core.Candidate, 0, len(list))
	for _, c := range list {
		if !f.Ignored(c) {
			out = append(out, c)
		}
	}
	return out
}
