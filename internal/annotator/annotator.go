// Package annotator converts raw text into the token and sentence sequences
// consumed by the summarization engine. Two implementations are provided: a
// rule-based Portuguese annotator that runs in-process, and a remote client
// for an annotation sidecar speaking JSON over HTTP.
package annotator

import (
	"context"
	"strings"
)

// POS is a Universal Dependencies part-of-speech tag.
type POS string

const (
	Noun  POS = "NOUN"
	Adj   POS = "ADJ"
	Verb  POS = "VERB"
	Adv   POS = "ADV"
	Propn POS = "PROPN"
	Num   POS = "NUM"
	Punct POS = "PUNCT"
	Det   POS = "DET"
	Adp   POS = "ADP"
	Pron  POS = "PRON"
	Cconj POS = "CCONJ"
	Sconj POS = "SCONJ"
	Aux   POS = "AUX"
	Other POS = "X"
)

// Token is a single annotated token. Tokens are immutable once produced.
type Token struct {
	Text     string `json:"text"`
	Lower    string `json:"lower"`
	POS      POS    `json:"pos"`
	IsStop   bool   `json:"is_stop"`
	IsPunct  bool   `json:"is_punct"`
	Sentence int    `json:"sentence"`
}

// IsContent reports whether the token is neither a stop-word nor punctuation
// and has non-empty trimmed text.
func (t Token) IsContent() bool {
	return !t.IsStop && !t.IsPunct && strings.TrimSpace(t.Text) != ""
}

// Sentence is a contiguous span of the document. Text is trimmed; Index is
// the position of the sentence among all sentences the annotator produced,
// empty ones included.
type Sentence struct {
	Text   string  `json:"text"`
	Index  int     `json:"index"`
	Tokens []Token `json:"tokens"`
}

// Document is the annotator output for one text.
type Document struct {
	Tokens    []Token    `json:"tokens"`
	Sentences []Sentence `json:"sentences"`
}

// NonEmptySentences returns the sentences whose trimmed text is non-empty, in
// document order.
func (d *Document) NonEmptySentences() []Sentence {
	out := make([]Sentence, 0, len(d.Sentences))
	for _, s := range d.Sentences {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Annotator tokenises, tags and segments text. Implementations must be safe
// for concurrent use.
type Annotator interface {
	Name() string
	Annotate(ctx context.Context, text string) (*Document, error)
}
