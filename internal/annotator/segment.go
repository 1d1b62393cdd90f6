package annotator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a raw token: a byte range of the input and whether it is a word.
type span struct {
	start, end int
	word       bool
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// joiner reports whether r may appear inside a word when surrounded by word
// runes, e.g. "guarda-chuva", "d'água" or "3,5".
func joiner(r, prev, next rune) bool {
	switch r {
	case '-', '\'', '’':
		return isWordRune(prev) && isWordRune(next)
	case ',', '.':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	}
	return false
}

// scan splits text into word and punctuation spans. Whitespace is dropped.
// Runs of the same punctuation rune ("...", "!!") form one span.
func scan(text string) []span {
	spans := make([]span, 0, len(text)/4)
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			start := i
			prev := r
			i += size
			for i < len(text) {
				c, n := utf8.DecodeRuneInString(text[i:])
				if isWordRune(c) {
					prev = c
					i += n
					continue
				}
				next, _ := utf8.DecodeRuneInString(text[i+n:])
				if i+n < len(text) && joiner(c, prev, next) {
					prev = c
					i += n
					continue
				}
				break
			}
			spans = append(spans, span{start: start, end: i, word: true})
		default:
			start := i
			i += size
			for i < len(text) {
				c, n := utf8.DecodeRuneInString(text[i:])
				if c != r {
					break
				}
				i += n
			}
			spans = append(spans, span{start: start, end: i})
		}
	}
	return spans
}

func isTerminal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case '.', '!', '?', '…':
		default:
			return false
		}
	}
	return true
}

func isCloser(s string) bool {
	switch s {
	case `"`, "'", ")", "]", "}", "»", "”", "’":
		return true
	}
	return false
}

// segment groups spans into sentences and returns, for each sentence, the
// index range [from, to) into spans.
func segment(text string, spans []span) [][2]int {
	var out [][2]int
	from := 0
	for i := 0; i < len(spans); i++ {
		sp := spans[i]
		if i+1 < len(spans) && paragraphBreak(text[sp.end:spans[i+1].start]) {
			out = append(out, [2]int{from, i + 1})
			from = i + 1
			continue
		}
		if sp.word || !isTerminal(text[sp.start:sp.end]) {
			continue
		}
		if text[sp.start:sp.end] == "." && i > 0 && spans[i-1].word && spans[i-1].end == sp.start {
			if _, ok := abbreviations[strings.ToLower(text[spans[i-1].start:spans[i-1].end])]; ok {
				continue
			}
		}
		end := i + 1
		for end < len(spans) && spans[end].start == spans[end-1].end && isCloser(text[spans[end].start:spans[end].end]) {
			end++
		}
		if end < len(spans) && spans[end].start == spans[end-1].end {
			// "3.o", "site.com" style runs are not boundaries
			continue
		}
		out = append(out, [2]int{from, end})
		from = end
		i = end - 1
	}
	if from < len(spans) {
		out = append(out, [2]int{from, len(spans)})
	}
	return out
}

func paragraphBreak(gap string) bool {
	return strings.Count(gap, "\n") >= 2
}
