package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kauebrandao/textsummarizer/internal/ratelimit"
	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/kauebrandao/textsummarizer/pkg/metrics"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	got := w.Header().Get(RequestIDHeader)
	if got == "" || got != seen {
		t.Fatalf("header %q, context %q", got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	if w := serve(h, req); w.Header().Get(RequestIDHeader) != "abc-123" || seen != "abc-123" {
		t.Errorf("incoming ID not reused: %q", w.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	if w := serve(h, req); len(w.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("oversized ID kept: %q", w.Header().Get(RequestIDHeader))
	}
}

func TestCORS(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowCredentials: true,
		MaxAge:           600,
	})(ok)

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantOrigin string
		wantStatus int
	}{
		{"no origin", http.MethodPost, "", false, "", http.StatusOK},
		{"allowed", http.MethodPost, "http://localhost:3000", false, "http://localhost:3000", http.StatusOK},
		{"denied", http.MethodPost, "http://evil.example", false, "", http.StatusOK},
		{"preflight", http.MethodOptions, "http://localhost:3000", true, "http://localhost:3000", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/summarize/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
				req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			}
			w := serve(h, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && w.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("credentials header missing")
			}
			if tt.preflight {
				if w.Body.Len() != 0 {
					t.Error("preflight reached the handler")
				}
				if w.Header().Get("Access-Control-Allow-Headers") != "Content-Type" || w.Header().Get("Access-Control-Max-Age") != "600" {
					t.Errorf("preflight headers = %v", w.Header())
				}
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	h := CORS(config.CORSConfig{AllowOrigins: []string{"*"}})(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anything.example")
	if got := serve(h, req).Header().Get("Access-Control-Allow-Origin"); got != "http://anything.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	h := RateLimit(ratelimit.New(2, time.Minute), m)(ok)

	req := func(path, ip string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		return r
	}
	for i := 0; i < 2; i++ {
		if w := serve(h, req("/summarize/", "1.2.3.4")); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	w := serve(h, req("/summarize/", "1.2.3.4"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if secs, err := strconv.Atoi(w.Header().Get("Retry-After")); err != nil || secs < 1 {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if !strings.Contains(w.Body.String(), "detail") {
		t.Errorf("body = %s", w.Body)
	}
	if got := testutil.ToFloat64(m.RateLimitedTotal); got != 1 {
		t.Errorf("rate_limited_requests_total = %v", got)
	}

	if w := serve(h, req("/summarize/", "5.6.7.8")); w.Code != http.StatusOK {
		t.Errorf("other client limited: %d", w.Code)
	}
	if w := serve(h, req("/health/live", "1.2.3.4")); w.Code != http.StatusOK {
		t.Errorf("health limited: %d", w.Code)
	}
}

func TestRateLimitNil(t *testing.T) {
	h := RateLimit(nil, nil)(ok)
	for i := 0; i < 100; i++ {
		if w := serve(h, httptest.NewRequest(http.MethodPost, "/summarize/", nil)); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.9:5555"
	if got := clientIP(r); got != "192.168.1.9" {
		t.Errorf("clientIP = %q", got)
	}
	r.Header.Set("X-Forwarded-For", " 8.8.8.8 , 1.1.1.1")
	if got := clientIP(r); got != "8.8.8.8" {
		t.Errorf("clientIP = %q", got)
	}
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	w := serve(Timeout(20*time.Millisecond)(slow), httptest.NewRequest(http.MethodPost, "/summarize/", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Tempo limite") {
		t.Errorf("body = %s", w.Body)
	}

	if w := serve(Timeout(time.Second)(ok), httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("fast handler: %d %q", w.Code, w.Body)
	}
	if w := serve(Timeout(0)(ok), httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusOK {
		t.Errorf("disabled timeout: %d", w.Code)
	}
}

func TestTimeoutKeepsHeadersAndStatus(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("criado"))
	})
	w := serve(Timeout(time.Second)(h), httptest.NewRequest(http.MethodPost, "/summarize/", nil))
	if w.Code != http.StatusCreated || w.Header().Get("X-Cache") != "hit" || w.Body.String() != "criado" {
		t.Errorf("got %d %v %q", w.Code, w.Header(), w.Body)
	}
}

func TestTimeoutRepanics(t *testing.T) {
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	defer func() {
		if recover() != "boom" {
			t.Error("panic was not propagated")
		}
	}()
	serve(Timeout(time.Second)(h), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestMetrics(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	h := Metrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	serve(h, httptest.NewRequest(http.MethodPost, "/summarize/", nil))
	serve(h, httptest.NewRequest(http.MethodGet, "/random/path", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("post", "/summarize", "418")); got != 1 {
		t.Errorf("summarize counter = %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("get", "other", "418")); got != 1 {
		t.Errorf("other counter = %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsInFlight); got != 0 {
		t.Errorf("in flight = %v", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/summarize/":             "/summarize",
		"/summarize":              "/summarize",
		"/api/v1/summarize/batch": "/api/v1/summarize/batch",
		"/":                       "other",
		"/favicon.ico":            "other",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
