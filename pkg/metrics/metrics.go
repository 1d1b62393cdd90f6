// Package metrics defines the Prometheus collectors used by the summarizer
// services and exposes an HTTP handler for scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the services.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SummariesTotal       *prometheus.CounterVec
	SummarizeLatency     *prometheus.HistogramVec
	SentencesSelected    prometheus.Histogram
	KeywordsReturned     prometheus.Histogram
	TextBytes            prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	AnnotatorFailures    *prometheus.CounterVec
	RateLimitedTotal     prometheus.Counter
	EventsDroppedTotal   prometheus.Counter
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates all collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all collectors and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate
// registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path and status code.",
			},
			[]string{"method", "path", "code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SummariesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "summaries_total",
				Help: "Total summarize operations by outcome (ok, degenerate, invalid, error).",
			},
			[]string{"outcome"},
		),
		SummarizeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "summarize_latency_seconds",
				Help:    "Summarize pipeline latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SentencesSelected: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "summary_sentences_selected",
				Help:    "Number of sentences returned per summary.",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50},
			},
		),
		KeywordsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "summary_keywords_returned",
				Help:    "Number of keywords returned per summary.",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
			},
		),
		TextBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "summarize_text_bytes",
				Help:    "Size of submitted texts in bytes.",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses.",
			},
		),
		AnnotatorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotator_failures_total",
				Help: "Annotation failures by annotator type.",
			},
			[]string{"annotator"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "Requests rejected by the rate limiter.",
			},
		),
		EventsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analytics_events_dropped_total",
				Help: "Analytics events dropped because the buffer was full.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SummariesTotal,
		m.SummarizeLatency,
		m.SentencesSelected,
		m.KeywordsReturned,
		m.TextBytes,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.AnnotatorFailures,
		m.RateLimitedTotal,
		m.EventsDroppedTotal,
		m.CircuitBreakerState,
	)

	return m
}
