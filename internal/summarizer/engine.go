// Package summarizer produces extractive summaries and keyword lists. The
// Engine runs annotate, frequency, keyword ranking, sentence scoring and
// selection; the subpackages hold each stage.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kauebrandao/textsummarizer/internal/annotator"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/frequency"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/keywords"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/scorer"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/selector"
	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/kauebrandao/textsummarizer/pkg/tracing"
)

// Result is the outcome of one summarization.
type Result struct {
	Summary       string          `json:"summary"`
	Keywords      []string        `json:"keywords"`
	Sentences     []scorer.Scored `json:"sentences,omitempty"`
	SentenceCount int             `json:"sentence_count"`
	Degenerate    bool            `json:"degenerate,omitempty"`
}

// Request is one document of a batch.
type Request struct {
	Text         string
	NumSentences int
}

// BatchItem holds either the result or the error of one batch document.
type BatchItem struct {
	Result *Result
	Err    error
}

// Engine is safe for concurrent use; every call allocates its own tables.
type Engine struct {
	annotator    annotator.Annotator
	themes       scorer.Themes
	keywordCount int
	concurrency  int
	tracing      bool
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithThemes replaces the theme bonuses.
func WithThemes(themes map[string]int) Option {
	return func(e *Engine) { e.themes = scorer.NewThemes(themes) }
}

// WithKeywordCount sets how many keywords are returned.
func WithKeywordCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.keywordCount = n
		}
	}
}

// WithBatchConcurrency bounds the parallelism of SummarizeBatch.
func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithTracing logs per-stage spans for every call.
func WithTracing(enabled bool) Option {
	return func(e *Engine) { e.tracing = enabled }
}

// NewEngine creates an Engine with no themes and the default keyword count.
func NewEngine(a annotator.Annotator, opts ...Option) *Engine {
	e := &Engine{
		annotator:    a,
		themes:       scorer.Themes{},
		keywordCount: keywords.DefaultCount,
		concurrency:  4,
		logger:       slog.Default().With("component", "summarizer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig builds an Engine from the summarizer section of the config.
func NewFromConfig(a annotator.Annotator, cfg config.SummarizerConfig, tracingEnabled bool) *Engine {
	return NewEngine(a,
		WithThemes(cfg.Themes),
		WithKeywordCount(cfg.KeywordCount),
		WithBatchConcurrency(cfg.BatchConcurrency),
		WithTracing(tracingEnabled),
	)
}

// KeywordCount returns the configured number of keywords.
func (e *Engine) KeywordCount() int { return e.keywordCount }

// AnnotatorName returns the name of the underlying annotator.
func (e *Engine) AnnotatorName() string { return e.annotator.Name() }

// Summarize returns the k best sentences of text in document order and the
// top keywords. k is clamped to the number of non-empty sentences; values
// below one select a single sentence. Callers validate input beforehand.
// A text without sentences is not an error: the summary and the keyword list
// carry their placeholder values.
func (e *Engine) Summarize(ctx context.Context, text string, k int) (*Result, error) {
	if e.tracing {
		var root *tracing.Span
		ctx, root = tracing.StartSpan(ctx, "summarize", "")
		defer func() {
			root.End()
			root.Log()
		}()
	}

	var doc *annotator.Document
	err := e.stage(ctx, "annotate", func(ctx context.Context) error {
		d, err := e.annotator.Annotate(ctx, text)
		doc = d
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("annotating text: %w", err)
	}

	var (
		table frequency.Table
		kws   []string
	)
	e.step(ctx, "keywords", func() {
		table = frequency.Build(doc.Tokens)
		kws = keywords.Extract(doc.Tokens, e.keywordCount)
	})

	var scored []scorer.Scored
	e.step(ctx, "score", func() {
		scored = scorer.Score(doc.Sentences, table, e.themes)
	})

	res := &Result{Keywords: kws, SentenceCount: len(scored)}
	e.step(ctx, "select", func() {
		res.Summary, res.Sentences = selector.Summarize(scored, k)
	})
	res.Degenerate = len(scored) == 0
	return res, nil
}

func (e *Engine) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if !e.tracing {
		return fn(ctx)
	}
	return tracing.Stage(ctx, name, fn)
}

// step times a stage that cannot fail.
func (e *Engine) step(ctx context.Context, name string, fn func()) {
	if !e.tracing {
		fn()
		return
	}
	_, s := tracing.StartChildSpan(ctx, name)
	fn()
	s.End()
}

// SummarizeBatch summarizes every request with bounded parallelism. A failing
// document does not abort the others; its error is reported in its item.
// The returned error is non-nil only when ctx is cancelled.
func (e *Engine) SummarizeBatch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	start := time.Now()
	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Summarize(gctx, req.Text, req.NumSentences)
			items[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summarizing batch: %w", err)
	}
	e.logger.Debug("batch summarized", "documents", len(reqs), "duration_ms", time.Since(start).Milliseconds())
	return items, nil
}
