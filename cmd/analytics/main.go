// Command analytics starts the standalone analytics aggregation service.
//
// It consumes summarize events from Kafka, aggregates them in memory (totals,
// cache hit rate, degenerate inputs, latency percentiles, top keywords),
// snapshots the stats to PostgreSQL periodically and exposes them at
// GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
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
	"github.com/kauebrandao/textsummarizer/internal/analytics/store"
	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/kauebrandao/textsummarizer/pkg/health"
	"github.com/kauebrandao/textsummarizer/pkg/kafka"
	"github.com/kauebrandao/textsummarizer/pkg/logger"
	"github.com/kauebrandao/textsummarizer/pkg/middleware"
	"github.com/kauebrandao/textsummarizer/pkg/postgres"
)

const snapshotRetention = 30 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "", "path to config file")
	port := flag.Int("port", 8081, "HTTP port of the analytics API")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", *port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SummarizeEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.SummarizeEvents)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		if err := consumer.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		cs := consumer.Stats()
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("lag %d, skipped %d", cs.Lag, cs.Skipped)}
	})

	var snapshots analytics.SnapshotLister
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		st := store.New(db)
		if err := st.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare analytics schema", "error", err)
			os.Exit(1)
		}
		if n, err := st.Prune(ctx, snapshotRetention); err != nil {
			slog.Warn("snapshot pruning failed", "error", err)
		} else if n > 0 {
			slog.Info("old snapshots pruned", "deleted", n)
		}
		st.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		checker.Register("postgres", health.OptionalCheck(db.PingContext))
		snapshots = st
	}

	analyticsHandler := analytics.NewHandler(aggregator, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsHandler.Snapshots)
	mux.HandleFunc("POST /api/v1/analytics/reset", analyticsHandler.Reset)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.CORS(cfg.CORS)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
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

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
