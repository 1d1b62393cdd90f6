// Package selector picks the highest-scoring sentences and restores their
// document order.
package selector

import (
	"sort"
	"strings"

	"github.com/kauebrandao/textsummarizer/internal/summarizer/scorer"
)

// NoSentences is the summary returned when the text has no non-empty
// sentence.
const NoSentences = "Texto vazio ou sem sentenças válidas."

// Select returns the k best sentences in document order. Higher scores win;
// among equal scores the earlier sentence wins. k is clamped to the number of
// sentences; k <= 0 selects nothing.
func Select(scored []scorer.Scored, k int) []scorer.Scored {
	if k > len(scored) {
		k = len(scored)
	}
	if k <= 0 {
		return nil
	}
	ranked := make([]scorer.Scored, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Position < ranked[j].Position
	})
	picked := ranked[:k]
	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Position < picked[j].Position
	})
	return picked
}

// Join concatenates the selected sentences with single spaces.
func Join(selected []scorer.Scored) string {
	parts := make([]string, len(selected))
	for i, s := range selected {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// Summarize selects k sentences and joins them, returning NoSentences when
// there is nothing to select from.
func Summarize(scored []scorer.Scored, k int) (string, []scorer.Scored) {
	if len(scored) == 0 {
		return NoSentences, nil
	}
	if k < 1 {
		k = 1
	}
	selected := Select(scored, k)
	return Join(selected), selected
}
