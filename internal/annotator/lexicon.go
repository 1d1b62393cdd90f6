package annotator

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// closedClass maps Portuguese function words to their tag. Every entry is a
// stop-word.
var closedClass = buildClosedClass(map[POS][]string{
	Det: {
		"o", "a", "os", "as", "um", "uma", "uns", "umas",
		"este", "esta", "estes", "estas", "esse", "essa", "esses", "essas",
		"aquele", "aquela", "aqueles", "aquelas",
		"meu", "minha", "meus", "minhas", "teu", "tua", "teus", "tuas",
		"seu", "sua", "seus", "suas", "nosso", "nossa", "nossos", "nossas",
		"vosso", "vossa", "vossos", "vossas",
		"cada", "todo", "toda", "todos", "todas", "outro", "outra", "outros", "outras",
		"algum", "alguma", "alguns", "algumas", "nenhum", "nenhuma",
		"qualquer", "quaisquer", "tal", "tais", "vários", "várias",
		"muita", "muitos", "muitas", "pouca", "poucos", "poucas",
		"tanta", "tantos", "tantas", "mesmo", "mesma", "mesmos", "mesmas",
		"próprio", "própria",
	},
	Adp: {
		"de", "do", "da", "dos", "das", "em", "no", "na", "nos", "nas",
		"por", "pelo", "pela", "pelos", "pelas", "para", "pra", "com", "sem",
		"sob", "sobre", "entre", "até", "desde", "após", "ante", "contra",
		"perante", "ao", "aos", "à", "às", "num", "numa", "nuns", "numas",
		"dum", "duma", "neste", "nesta", "nestes", "nestas", "nesse", "nessa",
		"nesses", "nessas", "naquele", "naquela", "naqueles", "naquelas",
		"deste", "desta", "destes", "destas", "desse", "dessa", "desses", "dessas",
		"daquele", "daquela", "daqueles", "daquelas", "através", "durante",
		"mediante",
	},
	Pron: {
		"eu", "tu", "ele", "ela", "nós", "vós", "eles", "elas", "você", "vocês",
		"me", "te", "se", "lhe", "lhes", "vos", "mim", "ti", "si",
		"comigo", "contigo", "conosco", "consigo", "que", "quem", "qual", "quais",
		"cujo", "cuja", "cujos", "cujas", "isto", "isso", "aquilo", "algo",
		"alguém", "ninguém", "nada", "tudo", "dele", "dela", "deles", "delas",
		"nele", "nela", "neles", "nelas", "lo", "la", "los", "las",
	},
	Cconj: {
		"e", "ou", "mas", "porém", "contudo", "todavia", "nem", "entretanto",
	},
	Sconj: {
		"porque", "pois", "como", "quando", "embora", "conforme",
		"enquanto", "porquanto", "conquanto",
	},
	Adv: {
		"não", "sim", "já", "ainda", "mais", "menos", "muito", "pouco", "bem",
		"mal", "também", "só", "apenas", "sempre", "nunca", "jamais", "aqui",
		"ali", "lá", "cá", "aí", "hoje", "ontem", "amanhã", "agora", "depois",
		"antes", "então", "assim", "talvez", "quase", "tão", "tanto", "logo",
		"onde", "portanto", "além", "inclusive", "aliás", "bastante", "demais",
		"cedo", "certamente", "provavelmente",
	},
	Aux: {
		"ser", "é", "são", "era", "eram", "foi", "foram", "fui", "fomos", "sou",
		"somos", "será", "serão", "seria", "seriam", "seja", "sejam", "sido",
		"sendo", "estar", "está", "estão", "estava", "estavam", "esteve",
		"estiveram", "estou", "estamos", "estará", "esteja", "estejam",
		"ter", "tem", "têm", "tinha", "tinham", "teve", "tiveram", "tenho",
		"temos", "terá", "terão", "tenha", "tenham", "tido", "haver", "há",
		"havia", "houve", "haverá", "haja", "pode", "podem", "podia", "podiam",
		"poderia", "poderiam", "deve", "devem", "devia", "deveria", "vai",
		"vão", "vou", "ia", "iam", "faz", "fazem", "fazer", "fez", "fizeram",
	},
})

// openClass holds content words whose tag the suffix heuristics would get
// wrong.
var openClass = map[string]POS{
	"lugar": Noun, "mulher": Noun, "colher": Noun, "prazer": Noun,
	"olhar": Noun, "jantar": Noun, "altar": Noun, "radar": Noun,
	"açúcar": Noun, "poder": Noun, "dever": Noun, "museu": Noun,
	"familiar": Adj, "popular": Adj, "escolar": Adj, "militar": Adj,
	"particular": Adj, "regular": Adj, "similar": Adj, "singular": Adj,
	"celular": Noun, "solar": Adj, "polar": Adj, "elementar": Adj,
	"secular": Adj, "nuclear": Adj, "lunar": Adj, "exemplar": Adj,
	"molecular": Adj, "muscular": Adj, "vulgar": Adj, "peculiar": Adj,
	"europeu": Adj, "grande": Adj, "grandes": Adj, "pequeno": Adj,
	"pequena": Adj, "pequenos": Adj, "pequenas": Adj, "novo": Adj,
	"nova": Adj, "novos": Adj, "novas": Adj, "velho": Adj, "velha": Adj,
	"bom": Adj, "boa": Adj, "bons": Adj, "boas": Adj, "mau": Adj, "má": Adj,
	"social": Adj, "sociais": Adj, "mental": Adj, "mentais": Adj,
	"urbano": Adj, "urbana": Adj, "urbanos": Adj, "urbanas": Adj,
	"público": Adj, "pública": Adj, "públicos": Adj, "públicas": Adj,
	"importante": Adj, "importantes": Adj, "diferente": Adj,
	"diferentes": Adj, "principal": Adj, "principais": Adj,
	"digital": Adj, "digitais": Adj, "cultural": Adj, "culturais": Adj,
	"local": Adj, "locais": Adj, "global": Adj, "nacional": Adj,
	"feliz": Adj, "felizes": Adj, "forte": Adj, "fortes": Adj,
	"amigo": Noun, "amigos": Noun, "amiga": Noun, "amigas": Noun,
}

// abbreviations lists lower-cased words that, followed by a period, do not
// end a sentence.
var abbreviations = map[string]struct{}{
	"sr": {}, "sra": {}, "srta": {}, "dr": {}, "dra": {}, "prof": {},
	"profa": {}, "av": {}, "exmo": {}, "exma": {}, "pág": {}, "págs": {},
	"cap": {}, "vol": {}, "núm": {}, "n": {}, "nº": {}, "fig": {}, "ex": {},
	"obs": {}, "séc": {}, "tel": {}, "cia": {}, "ltda": {},
}

func buildClosedClass(groups map[POS][]string) map[string]POS {
	m := make(map[string]POS)
	for pos, words := range groups {
		for _, w := range words {
			m[w] = pos
		}
	}
	return m
}

// Lexicon overrides the tag of individual words. Keys are lower-case forms.
type Lexicon struct {
	Tags  map[string]POS `yaml:"tags"`
	Stops []string       `yaml:"stopWords"`
}

// LoadLexicon reads a YAML lexicon file of the form
//
//	tags:
//	  telhado: NOUN
//	stopWords: [aliás]
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	normalized := make(map[string]POS, len(lex.Tags))
	for word, tag := range lex.Tags {
		normalized[strings.ToLower(strings.TrimSpace(word))] = POS(strings.ToUpper(string(tag)))
	}
	lex.Tags = normalized
	for i, w := range lex.Stops {
		lex.Stops[i] = strings.ToLower(strings.TrimSpace(w))
	}
	return &lex, nil
}
