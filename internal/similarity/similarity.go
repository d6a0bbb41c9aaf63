// Package similarity provides the string-similarity primitive used by the
// category suggestion engine. The matcher is an interface so the threshold
// and algorithm can be swapped or tested independently of ranking logic.
package similarity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Matcher scores how alike two already-normalized strings are, in [0, 1].
type Matcher interface {
	Ratio(a, b string) float64
}

// sequenceMatcher scores strings with the longest-matching-blocks ratio
// (2*M / total length), computed character-wise.
type sequenceMatcher struct{}

// NewSequenceMatcher returns the default Matcher.
func NewSequenceMatcher() Matcher {
	return sequenceMatcher{}
}

func (sequenceMatcher) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

// splitChars splits a string into per-rune elements for character-level
// matching.
func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// NormalizeDescription reduces a transaction description to its matchable
// form: trimmed, lowercased, inner whitespace collapsed.
func NormalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
