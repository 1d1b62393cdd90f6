// Command summarizer serves the extractive summarization API.
//
// It builds the shared annotator, wires the optional Redis result cache and
// Kafka analytics collector, and serves:
//
//	POST /summarize/                 {"text", "num_sentences"} -> {"summary", "keywords"}
//	POST /api/v1/summarize/batch     {"documents": [...]}      -> {"results": [...]}
//	GET  /api/v1/cache/stats
//	POST /api/v1/cache/invalidate
//	GET  /health/live, /health/ready
//
// Prometheus metrics are served on a separate port.
//
// Usage:
//
//	go run ./cmd/summarizer [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kauebrandao/textsummarizer/internal/analytics"
	"github.com/kauebrandao/textsummarizer/internal/analytics/collector"
	"github.com/kauebrandao/textsummarizer/internal/annotator"
	"github.com/kauebrandao/textsummarizer/internal/ratelimit"
	"github.com/kauebrandao/textsummarizer/internal/summarizer"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/cache"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/handler"
	"github.com/kauebrandao/textsummarizer/internal/summarizer/validator"
	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/kauebrandao/textsummarizer/pkg/health"
	"github.com/kauebrandao/textsummarizer/pkg/kafka"
	"github.com/kauebrandao/textsummarizer/pkg/logger"
	"github.com/kauebrandao/textsummarizer/pkg/metrics"
	"github.com/kauebrandao/textsummarizer/pkg/middleware"
	pkgredis "github.com/kauebrandao/textsummarizer/pkg/redis"
	"github.com/kauebrandao/textsummarizer/pkg/resilience"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting summarizer service", "port", cfg.Server.Port, "annotator", cfg.Annotator.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdownMetrics(context.Background())
	}

	onStateChange := func(name string, from, to resilience.State) {
		slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		if m != nil {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	ann, err := annotator.Shared(cfg.Annotator, onStateChange)
	if err != nil {
		slog.Error("failed to initialize annotator", "error", err)
		os.Exit(1)
	}
	engine := summarizer.NewFromConfig(ann, cfg.Summarizer, cfg.Tracing.Enabled)

	checker := health.NewChecker()
	if remote, ok := ann.(*annotator.Remote); ok {
		checker.Register("annotator", health.StateCheck(func() fmt.Stringer { return remote.Breaker().GetState() }))
	} else {
		checker.Register("annotator", func(ctx context.Context) health.ComponentHealth {
			return health.ComponentHealth{Status: health.StatusUp, Message: ann.Name()}
		})
	}

	var summaryCache *cache.SummaryCache
	if cfg.Cache.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, summary caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			ns := cache.Namespace(ann.Name(), engine.KeywordCount(), cfg.Summarizer.Themes)
			summaryCache = cache.New(redisClient, cfg.Cache.TTL, ns)
			checker.Register("redis", health.OptionalCheck(redisClient.Ping))
			slog.Info("summary cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Cache.TTL, "namespace", ns)
		}
	}

	var tracker analytics.Tracker
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SummarizeEvents)
		defer producer.Close()
		checker.Register("kafka", health.OptionalCheck(producer.Ping))
		if cfg.Analytics.BatchSize > 1 {
			bc := collector.NewBatchCollector(producer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
			if m != nil {
				bc.OnDrop(func(n int) { m.EventsDroppedTotal.Add(float64(n)) })
			}
			bc.Start(ctx)
			defer bc.Close()
			tracker = bc
		} else {
			c := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
			if m != nil {
				c.OnDrop(m.EventsDroppedTotal.Inc)
			}
			c.Start(ctx)
			defer c.Close()
			tracker = c
		}
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.SummarizeEvents)
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute, time.Minute)
		go limiter.Run(ctx, 5*time.Minute)
	}

	h := handler.New(engine, summaryCache, tracker, m, validator.Limits{
		MaxTextBytes: cfg.Summarizer.MaxTextBytes,
		MaxBatchSize: cfg.Summarizer.MaxBatchSize,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /summarize/{$}", h.Summarize)
	mux.HandleFunc("POST /summarize", h.Summarize)
	mux.HandleFunc("POST /api/v1/summarize/batch", h.Batch)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	chain = middleware.RateLimit(limiter, m)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.CORS(cfg.CORS)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("summarizer service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("summarizer service stopped")
}
