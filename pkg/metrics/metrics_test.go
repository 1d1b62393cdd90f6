package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestScrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)
	m.SummariesTotal.WithLabelValues("ok").Inc()
	m.CircuitBreakerState.WithLabelValues("annotator").Set(1)

	srv := httptest.NewServer(newMux(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`summaries_total{outcome="ok"} 1`,
		`circuit_breaker_state{name="annotator"} 1`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestIndex(t *testing.T) {
	w := httptest.NewRecorder()
	newMux(prometheus.NewRegistry()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/metrics") {
		t.Errorf("index = %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	newMux(prometheus.NewRegistry()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/other", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path = %d, want 404", w.Code)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegisterer(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected a panic on duplicate registration")
		}
	}()
	NewWithRegisterer(reg)
}
