// Package middleware holds the HTTP middleware shared by the summarizer and
// analytics services: request IDs, CORS, Prometheus instrumentation, rate
// limiting and request deadlines.
package middleware

import (
	"net/http"
	"strings"

	"github.com/kauebrandao/textsummarizer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes are the path label values; anything else is reported as "other"
// to keep label cardinality bounded.
var routes = []string{
	"/summarize",
	"/api/v1/summarize/batch",
	"/api/v1/cache/stats",
	"/api/v1/cache/invalidate",
	"/api/v1/analytics",
	"/api/v1/analytics/reset",
	"/api/v1/analytics/snapshots",
	"/health/live",
	"/health/ready",
}

// Metrics instruments next with promhttp: one counter and duration handler
// per route, curried with its path label, plus the in-flight gauge.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		instrument := func(path string) http.Handler {
			labels := prometheus.Labels{"path": path}
			return promhttp.InstrumentHandlerDuration(
				m.HTTPRequestDuration.MustCurryWith(labels),
				promhttp.InstrumentHandlerCounter(m.HTTPRequestsTotal.MustCurryWith(labels), next),
			)
		}
		instrumented := map[string]http.Handler{"other": instrument("other")}
		for _, path := range routes {
			instrumented[path] = instrument(path)
		}
		return promhttp.InstrumentHandlerInFlight(m.HTTPRequestsInFlight,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				instrumented[normalizePath(r.URL.Path)].ServeHTTP(w, r)
			}),
		)
	}
}

// normalizePath folds the trailing slash and maps unknown paths to "other".
func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, route := range routes {
		if path == route {
			return path
		}
	}
	return "other"
}
