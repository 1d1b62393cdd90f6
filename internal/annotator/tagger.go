package annotator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type suffixRule struct {
	suffix string
	minLen int
	pos    POS
}

// suffixRules are checked in order; the first match wins. minLen is counted
// in runes over the whole word.
var suffixRules = []suffixRule{
	{"mente", 7, Adv},
	{"ando", 5, Verb},
	{"endo", 5, Verb},
	{"indo", 5, Verb},
	{"aram", 5, Verb},
	{"eram", 5, Verb},
	{"iram", 5, Verb},
	{"avam", 6, Verb},
	{"ariam", 6, Verb},
	{"eriam", 6, Verb},
	{"iriam", 6, Verb},
	{"ava", 6, Verb},
	{"ou", 4, Verb},
	{"iu", 4, Verb},
	{"eu", 6, Verb},
	{"ar", 5, Verb},
	{"er", 5, Verb},
	{"ir", 5, Verb},
	{"oso", 5, Adj},
	{"osa", 5, Adj},
	{"osos", 6, Adj},
	{"osas", 6, Adj},
	{"ável", 5, Adj},
	{"ível", 5, Adj},
	{"áveis", 6, Adj},
	{"íveis", 6, Adj},
	{"ivo", 5, Adj},
	{"iva", 5, Adj},
	{"ivos", 6, Adj},
	{"ivas", 6, Adj},
}

type tagger struct {
	stops map[string]POS
	tags  map[string]POS
}

func newTagger(lex *Lexicon) *tagger {
	t := &tagger{
		stops: make(map[string]POS, len(closedClass)),
		tags:  make(map[string]POS, len(openClass)),
	}
	for w, pos := range closedClass {
		t.stops[w] = pos
	}
	for w, pos := range openClass {
		t.tags[w] = pos
	}
	if lex != nil {
		for w, pos := range lex.Tags {
			t.tags[w] = pos
			delete(t.stops, w)
		}
		for _, w := range lex.Stops {
			pos, ok := t.tags[w]
			if !ok {
				pos = Other
			}
			t.stops[w] = pos
		}
	}
	return t
}

// tag classifies a word token. initial is true for the first word of a
// sentence, where capitalisation carries no information.
func (t *tagger) tag(word, lower string, initial bool) (POS, bool) {
	if pos, ok := t.stops[lower]; ok {
		return pos, true
	}
	if pos, ok := t.tags[lower]; ok {
		return pos, false
	}
	if isNumber(lower) {
		return Num, false
	}
	first, _ := utf8.DecodeRuneInString(word)
	if !initial && unicode.IsUpper(first) {
		return Propn, false
	}
	n := utf8.RuneCountInString(lower)
	for _, rule := range suffixRules {
		if n >= rule.minLen && strings.HasSuffix(lower, rule.suffix) {
			return rule.pos, false
		}
	}
	return Noun, false
}

func isNumber(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == ',' || r == '.':
		default:
			return false
		}
	}
	return digits > 0
}
