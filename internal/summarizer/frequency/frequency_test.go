package frequency

import (
	"testing"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
)

func TestBuild(t *testing.T) {
	tokens := []annotator.Token{
		{Text: "Gato", Lower: "gato", POS: annotator.Noun},
		{Text: "gato", POS: annotator.Noun},
		{Text: "o", Lower: "o", POS: annotator.Det, IsStop: true},
		{Text: ".", Lower: ".", POS: annotator.Punct, IsPunct: true},
		{Text: "  ", Lower: "  ", POS: annotator.Other},
		{Text: "correu", Lower: "correu", POS: annotator.Verb},
		{Text: "Correu", Lower: " ", POS: annotator.Verb},
	}
	table := Build(tokens)
	want := Table{"gato": 2, "correu": 2}
	if len(table) != len(want) {
		t.Fatalf("table = %v, want %v", table, want)
	}
	for w, n := range want {
		if table[w] != n {
			t.Errorf("table[%q] = %d, want %d", w, table[w], n)
		}
	}
}

func TestWeight(t *testing.T) {
	table := Table{"gato": 2}
	tests := []struct {
		name string
		tok  annotator.Token
		want int
	}{
		{"content", annotator.Token{Text: "Gato", Lower: "gato"}, 2},
		{"stop word", annotator.Token{Text: "gato", Lower: "gato", IsStop: true}, 0},
		{"punctuation", annotator.Token{Text: ".", Lower: ".", IsPunct: true}, 0},
		{"unknown", annotator.Token{Text: "cão", Lower: "cão"}, 0},
		{"blank lower form", annotator.Token{Text: "GATO", Lower: "\t"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Weight(tt.tok); got != tt.want {
				t.Errorf("Weight = %d, want %d", got, tt.want)
			}
		})
	}
}
