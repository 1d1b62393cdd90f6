package annotator

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/kauebrandao/textsummarizer/pkg/resilience"
)

var (
	sharedOnce sync.Once
	shared     Annotator
	sharedErr  error
)

// Shared returns the process-wide annotator, building it from cfg on first
// use. Later calls return the same instance and ignore their arguments.
func Shared(cfg config.AnnotatorConfig, onStateChange func(name string, from, to resilience.State)) (Annotator, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New(cfg, onStateChange)
		if sharedErr == nil {
			slog.Info("annotator initialized", "type", shared.Name())
		}
	})
	return shared, sharedErr
}

// New builds an annotator from configuration. onStateChange receives circuit
// breaker transitions of the remote annotator and may be nil.
func New(cfg config.AnnotatorConfig, onStateChange func(name string, from, to resilience.State)) (Annotator, error) {
	switch cfg.Type {
	case "rule", "":
		var lex *Lexicon
		if cfg.LexiconPath != "" {
			l, err := LoadLexicon(cfg.LexiconPath)
			if err != nil {
				return nil, err
			}
			lex = l
		}
		return NewRule(lex), nil
	case "remote":
		if cfg.Remote.URL == "" {
			return nil, fmt.Errorf("remote annotator requires a url")
		}
		return NewRemote(cfg.Remote, onStateChange), nil
	default:
		return nil, fmt.Errorf("unknown annotator type %q", cfg.Type)
	}
}
