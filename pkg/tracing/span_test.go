package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kauebrandao/textsummarizer/pkg/logger"
)

func TestStartSpanUsesRequestID(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-1")
	ctx, root := StartSpan(ctx, "summarize", "")
	if root.TraceID != "req-1" {
		t.Errorf("TraceID = %q", root.TraceID)
	}
	if SpanFromContext(ctx) != root {
		t.Error("span not stored in context")
	}
	if _, s := StartSpan(context.Background(), "x", "explicit"); s.TraceID != "explicit" {
		t.Errorf("TraceID = %q", s.TraceID)
	}
}

func TestStage(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "summarize", "t")
	boom := errors.New("boom")

	if err := Stage(ctx, "annotate", func(ctx context.Context) error {
		if SpanFromContext(ctx).Name != "annotate" {
			t.Error("stage context does not carry the child span")
		}
		time.Sleep(2 * time.Millisecond)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := Stage(ctx, "score", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	root.End()
	root.Log()

	if len(root.Children) != 2 {
		t.Fatalf("children = %d", len(root.Children))
	}
	if root.Children[1].Attrs["error"] != "boom" {
		t.Errorf("attrs = %v", root.Children[1].Attrs)
	}
	d := root.Durations()
	if d["annotate"] < 2*time.Millisecond {
		t.Errorf("annotate duration = %s", d["annotate"])
	}
	if root.Children[0].TraceID != "t" {
		t.Errorf("child TraceID = %q", root.Children[0].TraceID)
	}
}

func TestStartChildSpanWithoutParent(t *testing.T) {
	_, s := StartChildSpan(context.Background(), "orphan")
	if s.TraceID != "" {
		t.Errorf("TraceID = %q", s.TraceID)
	}
}

func TestLogFlattensStages(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "summarize", "t")
	Stage(ctx, "score", func(ctx context.Context) error {
		return Stage(ctx, "themes", func(context.Context) error { return nil })
	})
	root.End()

	keys := map[string]bool{}
	attrs := root.appendAttrs(nil, "")
	for i := 0; i < len(attrs); i += 2 {
		keys[attrs[i].(string)] = true
	}
	for _, want := range []string{"total_us", "score_us", "score.themes_us"} {
		if !keys[want] {
			t.Errorf("missing %q in %v", want, attrs)
		}
	}
}
