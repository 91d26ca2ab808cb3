// Command analytics aggregates match events published by the matcher.
//
// It consumes the match-events topic, keeps windowed aggregates in memory,
// snapshots them to Postgres and serves:
//
//	GET /api/v1/analytics            live aggregates of the current window
//	GET /api/v1/analytics/snapshots  stored snapshots, newest first
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logCloser := logger.Setup(cfg.Logging)
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		slog.Error("analytics service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("analytics service stopped")
}

func run(cfg *config.Config) error {
	slog.Info("starting analytics service", "port", cfg.Analytics.Port, "topic", cfg.Kafka.Topics.MatchEvents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker(2 * time.Second)
	agg := analytics.NewAggregator()
	var wg sync.WaitGroup
	defer wg.Wait()
	defer stop()

	var snapshots analytics.SnapshotLister
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		if err := db.Migrate(ctx, analytics.Schema); err != nil {
			return err
		}
		store := analytics.NewStore(db.DB)
		snapshots = store
		checker.Optional("postgres", db.Ping)

		snap := analytics.NewSnapshotter(agg, store, cfg.Analytics.SnapshotInterval, cfg.Analytics.WindowSize)
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap.Run(ctx)
		}()
	}

	consumed := m.AnalyticsEvents.WithLabelValues("consumed")
	rejected := m.AnalyticsEvents.WithLabelValues("rejected")
	handle := kafka.JSONHandler(agg.Handle)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.MatchEvents, func(ctx context.Context, key, value []byte) error {
		if err := handle(ctx, key, value); err != nil {
			rejected.Inc()
			return err
		}
		consumed.Inc()
		return nil
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil {
			slog.Error("match event consumer stopped", "error", err)
			stop()
		}
	}()

	mux := http.NewServeMux()
	analytics.NewHandler(agg, snapshots).Register(mux)
	checker.Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Analytics.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Recover,
			middleware.AccessLog,
			middleware.Metrics(m),
			middleware.CORS(cfg.CORS),
		),
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
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
