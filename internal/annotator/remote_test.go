package annotator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kauebrandao/textsummarizer/pkg/config"
	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
	"github.com/kauebrandao/textsummarizer/pkg/resilience"
)

const sidecarResponse = `{
  "tokens": [
    {"text": "Olá", "pos": "INTJ", "sentence": 0},
    {"text": "mundo", "lower": "mundo", "pos": "NOUN", "sentence": 0},
    {"text": ".", "lower": ".", "pos": "PUNCT", "is_punct": true, "sentence": 0}
  ],
  "sentences": [{"text": " Olá mundo. ", "index": 0}]
}`

func remoteConfig(url string) config.RemoteAnnotatorConfig {
	return config.RemoteAnnotatorConfig{
		URL:              url,
		Timeout:          2 * time.Second,
		MaxAttempts:      3,
		FailureThreshold: 10,
		ResetTimeout:     time.Minute,
	}
}

func TestRemoteAnnotate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/annotate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text != "Olá mundo." {
			t.Errorf("request body = %+v (%v)", req, err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sidecarResponse))
	}))
	defer srv.Close()

	doc, err := NewRemote(remoteConfig(srv.URL+"/"), nil).Annotate(context.Background(), "Olá mundo.")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(doc.Sentences) != 1 || doc.Sentences[0].Text != "Olá mundo." {
		t.Fatalf("sentences = %+v", doc.Sentences)
	}
	if got := len(doc.Sentences[0].Tokens); got != 3 {
		t.Errorf("sentence tokens = %d, want 3", got)
	}
	if doc.Tokens[0].Lower != "olá" {
		t.Errorf("missing lower form not filled: %q", doc.Tokens[0].Lower)
	}
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(sidecarResponse))
	}))
	defer srv.Close()

	if _, err := NewRemote(remoteConfig(srv.URL), nil).Annotate(context.Background(), "Olá mundo."); err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestRemoteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad text", http.StatusBadRequest)
	}))
	defer srv.Close()

	a := NewRemote(remoteConfig(srv.URL), nil)
	_, err := a.Annotate(context.Background(), "x")
	if !errors.Is(err, apperrors.ErrAnnotationFailed) {
		t.Fatalf("err = %v, want ErrAnnotationFailed", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if c := a.Breaker().Counts(); c.Failures != 0 {
		t.Errorf("client error counted against the circuit: %+v", c)
	}
}

func TestRemoteRejectsDanglingSentenceReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tokens":[{"text":"a","sentence":4}],"sentences":[{"text":"a","index":0}]}`))
	}))
	defer srv.Close()

	cfg := remoteConfig(srv.URL)
	cfg.MaxAttempts = 1
	if _, err := NewRemote(cfg, nil).Annotate(context.Background(), "a"); !errors.Is(err, apperrors.ErrAnnotationFailed) {
		t.Fatalf("err = %v, want ErrAnnotationFailed", err)
	}
}

func TestRemoteCircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	var transitions []resilience.State
	cfg := remoteConfig(srv.URL)
	cfg.MaxAttempts = 1
	cfg.FailureThreshold = 2
	a := NewRemote(cfg, func(_ string, _, to resilience.State) {
		transitions = append(transitions, to)
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := a.Annotate(ctx, "x"); !errors.Is(err, apperrors.ErrAnnotationFailed) {
			t.Fatalf("call %d: err = %v", i, err)
		}
	}
	_, err := a.Annotate(ctx, "x")
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if got := apperrors.HTTPStatusCode(err); got != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", got)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("sidecar calls = %d, want 2", got)
	}
	if a.Breaker().GetState() != resilience.StateOpen {
		t.Errorf("state = %s, want open", a.Breaker().GetState())
	}
	if len(transitions) != 1 || transitions[0] != resilience.StateOpen {
		t.Errorf("transitions = %v", transitions)
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AnnotatorConfig
		want    string
		wantErr bool
	}{
		{name: "default", cfg: config.AnnotatorConfig{}, want: "rule"},
		{name: "rule", cfg: config.AnnotatorConfig{Type: "rule"}, want: "rule"},
		{name: "remote", cfg: config.AnnotatorConfig{Type: "remote", Remote: config.RemoteAnnotatorConfig{URL: "http://localhost:1"}}, want: "remote"},
		{name: "remote without url", cfg: config.AnnotatorConfig{Type: "remote"}, wantErr: true},
		{name: "unknown", cfg: config.AnnotatorConfig{Type: "spacy"}, wantErr: true},
		{name: "missing lexicon", cfg: config.AnnotatorConfig{LexiconPath: "/nonexistent/lexicon.yaml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if a.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", a.Name(), tt.want)
			}
		})
	}
}

func TestSharedBuildsOnce(t *testing.T) {
	const callers = 16
	got := make([]Annotator, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := Shared(config.AnnotatorConfig{Type: "rule"}, nil)
			if err != nil {
				t.Errorf("Shared: %v", err)
			}
			got[i] = a
		}()
	}
	wg.Wait()

	for i, a := range got {
		if a != got[0] {
			t.Fatalf("caller %d got a different instance", i)
		}
	}
	again, _ := Shared(config.AnnotatorConfig{Type: "spacy"}, nil)
	if again != got[0] {
		t.Error("later call rebuilt the annotator")
	}
}
