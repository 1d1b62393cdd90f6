package annotator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kauebrandao/textsummarizer/pkg/config"
	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
	"github.com/kauebrandao/textsummarizer/pkg/resilience"
)

const maxResponseBytes = 32 << 20

// Remote calls an annotation sidecar over HTTP:
//
//	POST {url}/annotate {"text": "..."}
//	200 {"tokens": [{"text", "lower", "pos", "is_stop", "is_punct", "sentence"}],
//	     "sentences": [{"text", "index"}]}
//
// Tokens reference their sentence by index; Annotate rebuilds the per-sentence
// token lists from that reference.
type Remote struct {
	url     string
	client  *http.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

type annotateRequest struct {
	Text string `json:"text"`
}

// statusError is returned for non-2xx sidecar responses.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("annotator returned %d: %s", e.code, e.body)
}

// isSidecarFault separates sidecar trouble (transport errors, 5xx, bad
// payloads) from 4xx rejections of the text itself. Only the former are
// retried or count against the circuit.
func isSidecarFault(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}

// NewRemote creates a sidecar client. onStateChange may be nil.
func NewRemote(cfg config.RemoteAnnotatorConfig, onStateChange func(name string, from, to resilience.State)) *Remote {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Remote{
		url:    strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{Timeout: timeout},
		retry: resilience.RetryConfig{
			MaxAttempts: cfg.MaxAttempts,
			Retryable:   isSidecarFault,
		},
		breaker: resilience.NewCircuitBreaker("annotator", resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			ResetTimeout:     cfg.ResetTimeout,
			IsFailure:        isSidecarFault,
			OnStateChange:    onStateChange,
		}),
		logger: slog.Default().With("component", "remote-annotator"),
	}
}

func (a *Remote) Name() string { return "remote" }

// Breaker exposes the circuit breaker for health checks and metrics.
func (a *Remote) Breaker() *resilience.CircuitBreaker { return a.breaker }

// Annotate sends text to the sidecar, retrying transient failures behind the
// circuit breaker.
func (a *Remote) Annotate(ctx context.Context, text string) (*Document, error) {
	var doc *Document
	err := a.breaker.Execute(func() error {
		return resilience.Retry(ctx, "annotate", a.retry, func() error {
			d, err := a.call(ctx, text)
			if err != nil {
				return err
			}
			doc = d
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, err.Error())
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAnnotationFailed, err)
	}
	return doc, nil
}

func (a *Remote) call(ctx context.Context, text string) (*Document, error) {
	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling annotate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url+"/annotate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling annotator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}
	var doc Document
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding annotator response: %w", err)
	}
	if err := link(&doc); err != nil {
		return nil, err
	}
	a.logger.Debug("annotation received",
		"tokens", len(doc.Tokens),
		"sentences", len(doc.Sentences),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return &doc, nil
}

// link normalises a decoded document: fills missing lowercase forms, trims
// sentence text and attaches tokens to their sentences.
func link(doc *Document) error {
	byIndex := make(map[int]int, len(doc.Sentences))
	for i := range doc.Sentences {
		doc.Sentences[i].Text = strings.TrimSpace(doc.Sentences[i].Text)
		doc.Sentences[i].Tokens = nil
		byIndex[doc.Sentences[i].Index] = i
	}
	for i := range doc.Tokens {
		tok := &doc.Tokens[i]
		if tok.Lower == "" {
			tok.Lower = strings.ToLower(tok.Text)
		}
		si, ok := byIndex[tok.Sentence]
		if !ok {
			return fmt.Errorf("%w: token %d references unknown sentence %d", apperrors.ErrAnnotationFailed, i, tok.Sentence)
		}
		doc.Sentences[si].Tokens = append(doc.Sentences[si].Tokens, *tok)
	}
	return nil
}
