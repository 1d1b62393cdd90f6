package keywords

import (
	"context"
	"reflect"
	"testing"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
)

func tokensOf(t *testing.T, text string) []annotator.Token {
	t.Helper()
	doc, err := annotator.NewRule(nil).Annotate(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	return doc.Tokens
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want []string
	}{
		{
			name: "frequency then first occurrence",
			text: "O gato subiu no telhado. O cão correu no parque. O gato e o cão são amigos.",
			n:    5,
			want: []string{"gato", "cão", "telhado", "parque", "amigos"},
		},
		{
			name: "truncated",
			text: "O gato subiu no telhado. O cão correu no parque. O gato e o cão são amigos.",
			n:    2,
			want: []string{"gato", "cão"},
		},
		{
			name: "case folded",
			text: "Casa bonita. A casa é grande.",
			n:    5,
			want: []string{"casa", "bonita", "grande"},
		},
		{
			name: "only stop words",
			text: "Ele não foi lá.",
			n:    5,
			want: []string{NoKeywords},
		},
		{
			name: "empty",
			text: "",
			n:    5,
			want: []string{NoKeywords},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tokensOf(t, tt.text), tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRankIgnoresNonNominal(t *testing.T) {
	tokens := []annotator.Token{
		{Text: "correu", Lower: "correu", POS: annotator.Verb},
		{Text: "Maria", Lower: "maria", POS: annotator.Propn},
		{Text: "rapidamente", Lower: "rapidamente", POS: annotator.Adv},
		{Text: "verde", Lower: "verde", POS: annotator.Adj},
		{Text: "mesa", Lower: "mesa", POS: annotator.Noun, IsStop: true},
	}
	got := Rank(tokens, 0)
	want := []Keyword{{Word: "verde", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank = %+v, want %+v", got, want)
	}
}
