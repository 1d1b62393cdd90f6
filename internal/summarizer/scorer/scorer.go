// Package scorer assigns an importance score to every sentence of a document
// from word frequencies, theme bonuses and position.
package scorer

import (
	"strings"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/frequency"
)

const (
	// PositionBonus is added to the first and the last sentence.
	PositionBonus = 3

	// DefaultThemeWeight is the bonus of a theme configured without one.
	DefaultThemeWeight = 5
)

// Themes maps a lower-case substring to the bonus a sentence containing it
// receives.
type Themes map[string]int

// NewThemes normalises a theme mapping: keys are trimmed and lower-cased,
// empty keys dropped. When two keys collapse to the same form the larger
// weight is kept.
func NewThemes(m map[string]int) Themes {
	t := make(Themes, len(m))
	for theme, weight := range m {
		k := strings.ToLower(strings.TrimSpace(theme))
		if k == "" || weight < 0 {
			continue
		}
		if cur, ok := t[k]; !ok || weight > cur {
			t[k] = weight
		}
	}
	return t
}

// ThemesFromList gives every theme DefaultThemeWeight.
func ThemesFromList(themes ...string) Themes {
	m := make(map[string]int, len(themes))
	for _, th := range themes {
		m[th] = DefaultThemeWeight
	}
	return NewThemes(m)
}

// Bonus returns the sum of the weights of all themes found in text.
func (t Themes) Bonus(text string) int {
	if len(t) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	bonus := 0
	for theme, weight := range t {
		if strings.Contains(lower, theme) {
			bonus += weight
		}
	}
	return bonus
}

// Scored is a sentence with its score. Position is the ordinal among
// non-empty sentences; Index is the annotator's sentence index.
type Scored struct {
	Position  int    `json:"position"`
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Score     int    `json:"score"`
	Frequency int    `json:"frequency"`
	Theme     int    `json:"theme"`
	Location  int    `json:"location"`
}

// Score returns one entry per non-empty sentence, in document order.
func Score(sentences []annotator.Sentence, table frequency.Table, themes Themes) []Scored {
	nonEmpty := make([]annotator.Sentence, 0, len(sentences))
	for _, s := range sentences {
		if strings.TrimSpace(s.Text) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	last := len(nonEmpty) - 1
	out := make([]Scored, len(nonEmpty))
	for i, s := range nonEmpty {
		sc := Scored{
			Position: i,
			Index:    s.Index,
			Text:     strings.TrimSpace(s.Text),
		}
		for _, tok := range s.Tokens {
			sc.Frequency += table.Weight(tok)
		}
		sc.Theme = themes.Bonus(sc.Text)
		if i == 0 || i == last {
			sc.Location = PositionBonus
		}
		sc.Score = sc.Frequency + sc.Theme + sc.Location
		out[i] = sc
	}
	return out
}
