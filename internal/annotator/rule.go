package annotator

import (
	"context"
	"strings"
)

// Rule is an in-process annotator for Portuguese built from a closed-class
// lexicon and suffix heuristics. It holds no mutable state after
// construction and is safe for concurrent use.
type Rule struct {
	tagger *tagger
}

// NewRule builds a rule annotator. lex may be nil.
func NewRule(lex *Lexicon) *Rule {
	return &Rule{tagger: newTagger(lex)}
}

func (a *Rule) Name() string { return "rule" }

// Annotate tokenises, segments and tags text. It never fails; ctx is only
// checked before work starts.
func (a *Rule) Annotate(ctx context.Context, text string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spans := scan(text)
	ranges := segment(text, spans)

	doc := &Document{
		Tokens:    make([]Token, 0, len(spans)),
		Sentences: make([]Sentence, 0, len(ranges)),
	}
	for si, rg := range ranges {
		first := true
		startTok := len(doc.Tokens)
		for _, sp := range spans[rg[0]:rg[1]] {
			surface := text[sp.start:sp.end]
			tok := Token{
				Text:     surface,
				Lower:    strings.ToLower(surface),
				Sentence: si,
			}
			if sp.word {
				tok.POS, tok.IsStop = a.tagger.tag(surface, tok.Lower, first)
				first = false
			} else {
				tok.POS = Punct
				tok.IsPunct = true
			}
			doc.Tokens = append(doc.Tokens, tok)
		}
		var sentText string
		if rg[1] > rg[0] {
			sentText = strings.TrimSpace(text[spans[rg[0]].start:spans[rg[1]-1].end])
		}
		doc.Sentences = append(doc.Sentences, Sentence{
			Text:   sentText,
			Index:  si,
			Tokens: doc.Tokens[startTok:len(doc.Tokens):len(doc.Tokens)],
		})
	}
	return doc, nil
}
