// Package keywords ranks noun and adjective content words by frequency.
package keywords

import (
	"sort"
	"strings"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
)

const (
	// DefaultCount is the number of keywords returned when the caller asks
	// for zero or fewer.
	DefaultCount = 5

	// NoKeywords is the single-element result returned when no token
	// qualifies.
	NoKeywords = "Nenhuma palavra-chave encontrada."
)

// Keyword is a ranked word with its occurrence count.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func eligible(tok annotator.Token) bool {
	if tok.POS != annotator.Noun && tok.POS != annotator.Adj {
		return false
	}
	return tok.IsContent()
}

// Rank returns up to n keywords ordered by descending count. Words with equal
// counts keep the order of their first occurrence among eligible tokens.
func Rank(tokens []annotator.Token, n int) []Keyword {
	if n <= 0 {
		n = DefaultCount
	}
	index := make(map[string]int)
	var ranked []Keyword
	for _, tok := range tokens {
		if !eligible(tok) {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(tok.Text))
		if i, ok := index[word]; ok {
			ranked[i].Count++
			continue
		}
		index[word] = len(ranked)
		ranked = append(ranked, Keyword{Word: word, Count: 1})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Extract returns the words of Rank, or the NoKeywords sentinel when nothing
// qualifies.
func Extract(tokens []annotator.Token, n int) []string {
	ranked := Rank(tokens, n)
	if len(ranked) == 0 {
		return []string{NoKeywords}
	}
	words := make([]string, len(ranked))
	for i, kw := range ranked {
		words[i] = kw.Word
	}
	return words
}
