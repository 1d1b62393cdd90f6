// Package frequency counts content-word occurrences across a document.
package frequency

import (
	"strings"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
)

// Table maps a lower-case word form to its number of occurrences.
type Table map[string]int

// Build counts one occurrence of the lower-case form of every content token
// (not a stop-word, not punctuation, non-empty after trimming).
func Build(tokens []annotator.Token) Table {
	t := make(Table, len(tokens)/2)
	for _, tok := range tokens {
		if !tok.IsContent() {
			continue
		}
		t[key(tok)]++
	}
	return t
}

// Weight returns the frequency of a token's lower-case form, or 0 when the
// token is not a content token.
func (t Table) Weight(tok annotator.Token) int {
	if !tok.IsContent() {
		return 0
	}
	return t[key(tok)]
}

func key(tok annotator.Token) string {
	if l := strings.TrimSpace(tok.Lower); l != "" {
		return l
	}
	return strings.ToLower(strings.TrimSpace(tok.Text))
}
