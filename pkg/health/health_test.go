package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type state string

func (s state) String() string { return string(s) }

func stateOf(s string) func() fmt.Stringer {
	return func() fmt.Stringer { return state(s) }
}

func okPing(context.Context) error   { return nil }
func failPing(context.Context) error { return errors.New("connection refused") }

func TestRunAggregates(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"empty", nil, StatusUp},
		{"all up", map[string]Check{"a": PingCheck(okPing), "b": StateCheck(stateOf("closed"))}, StatusUp},
		{"optional failure", map[string]Check{"a": PingCheck(okPing), "redis": OptionalCheck(failPing)}, StatusDegraded},
		{"half-open", map[string]Check{"annotator": StateCheck(stateOf("half-open"))}, StatusDegraded},
		{"required failure", map[string]Check{"kafka": PingCheck(failPing), "redis": OptionalCheck(failPing)}, StatusDown},
		{"circuit open", map[string]Check{"annotator": StateCheck(stateOf("open"))}, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("status = %s, want %s (%+v)", report.Status, tt.want, report.Components)
			}
			if len(report.Components) != len(tt.checks) {
				t.Errorf("components = %d, want %d", len(report.Components), len(tt.checks))
			}
		})
	}
}

func TestPingCheckMessage(t *testing.T) {
	got := PingCheck(failPing)(context.Background())
	if got.Status != StatusDown || got.Message != "connection refused" {
		t.Errorf("got %+v", got)
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("annotator", StateCheck(stateOf("closed")))

	w := httptest.NewRecorder()
	c.ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var report Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Components["annotator"].Status != StatusUp {
		t.Errorf("report = %+v", report)
	}

	c.Register("postgres", PingCheck(failPing))
	w = httptest.NewRecorder()
	c.ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestLiveHandler(t *testing.T) {
	c := NewChecker()
	c.Register("postgres", PingCheck(failPing))
	w := httptest.NewRecorder()
	c.LiveHandler()(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Code != http.StatusOK {
		t.Errorf("liveness must not depend on checks: %d", w.Code)
	}
}

func TestReadyWhenDegraded(t *testing.T) {
	c := NewChecker()
	c.Register("annotator", StateCheck(stateOf("closed")))
	c.Register("redis", OptionalCheck(failPing))

	w := httptest.NewRecorder()
	c.ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("degraded instance must stay ready, got %d", w.Code)
	}
	var report Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusDegraded || report.Components["redis"].Message != "connection refused" {
		t.Errorf("report = %+v", report)
	}
}

func TestCheckTimeout(t *testing.T) {
	c := NewChecker()
	c.timeout = 10 * time.Millisecond
	c.Register("kafka", PingCheck(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	if got := c.Run(context.Background()); got.Status != StatusDown {
		t.Errorf("status = %s, want down", got.Status)
	}
}
