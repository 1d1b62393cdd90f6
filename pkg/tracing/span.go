// Package tracing times the stages of a summarize call. The root span rides
// in the context, Stage adds a timed child for each pipeline step, and Log
// writes the whole tree as a single debug line keyed by stage path
// ("annotate_us", "score.themes_us", ...).
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kauebrandao/textsummarizer/pkg/logger"
)

type spanKey struct{}

type Span struct {
	Name      string
	TraceID   string
	StartTime time.Time
	Duration  time.Duration
	Attrs     map[string]any
	Children  []*Span

	mu sync.Mutex
}

func newSpan(name, traceID string) *Span {
	return &Span{Name: name, TraceID: traceID, StartTime: time.Now(), Attrs: map[string]any{}}
}

// StartSpan opens a root span. An empty traceID falls back to the request
// ID carried by ctx.
func StartSpan(ctx context.Context, name string, traceID string) (context.Context, *Span) {
	if traceID == "" {
		traceID = logger.RequestID(ctx)
	}
	s := newSpan(name, traceID)
	return context.WithValue(ctx, spanKey{}, s), s
}

// StartChildSpan opens a span under the one in ctx. Without a parent the
// span is detached and never logged.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	if parent == nil {
		s := newSpan(name, "")
		return context.WithValue(ctx, spanKey{}, s), s
	}
	s := newSpan(name, parent.TraceID)
	parent.mu.Lock()
	parent.Children = append(parent.Children, s)
	parent.mu.Unlock()
	return context.WithValue(ctx, spanKey{}, s), s
}

// Stage runs fn in a child span named name and records its error, if any.
func Stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, s := StartChildSpan(ctx, name)
	err := fn(ctx)
	if err != nil {
		s.SetAttr("error", err.Error())
	}
	s.End()
	return err
}

func (s *Span) End() {
	s.mu.Lock()
	s.Duration = time.Since(s.StartTime)
	s.mu.Unlock()
}

func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

func SpanFromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

// Durations sums the direct children's durations by name.
func (s *Span) Durations() map[string]time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Duration, len(s.Children))
	for _, c := range s.Children {
		c.mu.Lock()
		out[c.Name] += c.Duration
		c.mu.Unlock()
	}
	return out
}

// Log writes the span tree as one debug record.
func (s *Span) Log() {
	l := slog.Default()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := []any{"trace_id", s.TraceID, "span", s.Name}
	attrs = s.appendAttrs(attrs, "")
	l.Debug("trace", attrs...)
}

// appendAttrs flattens the tree below s into key/value pairs. Child keys are
// dotted paths relative to the root.
func (s *Span) appendAttrs(attrs []any, prefix string) []any {
	s.mu.Lock()
	key := "total"
	if prefix != "" {
		key = prefix
	}
	attrs = append(attrs, key+"_us", s.Duration.Microseconds())
	for k, v := range s.Attrs {
		attrs = append(attrs, key+"."+k, v)
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	for _, c := range children {
		path := c.Name
		if prefix != "" {
			path = prefix + "." + c.Name
		}
		attrs = c.appendAttrs(attrs, path)
	}
	return attrs
}
