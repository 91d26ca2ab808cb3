// Command matcher serves product matching over HTTP.
//
// At startup it loads every category listed in the catalog's product-db.json,
// preprocesses the catalogs and then answers:
//
//	POST   /api/v1/match/{category}     top matches for one item
//	POST   /api/v1/classify/{category}  probabilities for explicit pairs
//	GET    /api/v1/categories
//	GET    /api/v1/cache/stats
//	DELETE /api/v1/cache
//
// Usage:
//
//	go run ./cmd/matcher [-config configs/development.yaml]
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/api/handler"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/api/router"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching/cache"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/resilience"
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
		slog.Error("matcher failed", "error", err)
		os.Exit(1)
	}
	slog.Info("matcher stopped")
}

func run(cfg *config.Config) error {
	slog.Info("starting matcher", "port", cfg.Server.Port, "catalog_source", cfg.Catalog.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Port); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}
	breakerCfg := resilience.BreakerConfig{
		OnStateChange: func(name string, _, to resilience.State) {
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	}

	checker := health.NewChecker(2 * time.Second)

	var db *postgres.Client
	if cfg.Catalog.Source == config.SourcePostgres {
		var err error
		db, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()
		checker.Critical("postgres", db.Ping)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	cats, err := catalog.LoadCategories(engine.CategoriesPath(cfg.Catalog))
	if err != nil {
		return err
	}
	var sqlDB *sql.DB
	if db != nil {
		sqlDB = db.DB
	}
	load, err := engine.Loader(cfg.Catalog, sqlDB)
	if err != nil {
		return err
	}
	reg, err := eng.Registry(ctx, cats, load, m)
	if err != nil {
		return fmt.Errorf("building category registry: %w", err)
	}
	slog.Info("categories loaded", "loaded", reg.Len(), "listed", len(cats), "items", reg.Items())
	checker.Critical("catalogs", func(context.Context) error {
		if reg.Len() == 0 {
			return errors.New("no category loaded")
		}
		return nil
	})

	opts := []handler.Option{handler.WithMetrics(m)}

	if cfg.Matching.CacheEnabled {
		rc, err := pkgredis.NewClient(ctx, cfg.Redis, breakerCfg)
		if err != nil {
			slog.Warn("redis unavailable, match caching disabled", "error", err)
		} else {
			defer rc.Close()
			cacheOpts := []cache.Option{cache.WithComputeTimeout(cfg.Server.WriteTimeout)}
			if m != nil {
				cacheOpts = append(cacheOpts, cache.WithCounters(m.CacheHitsTotal.Inc, m.CacheMissesTotal.Inc))
			}
			opts = append(opts, handler.WithCache(cache.New(rc, cfg.Redis.CacheTTL, cacheOpts...)))
			checker.Optional("redis", rc.Ping)
			slog.Info("match cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.MatchEvents, breakerCfg)
		defer producer.Close()
		var collectorOpts []analytics.CollectorOption
		if m != nil {
			collectorOpts = append(collectorOpts, analytics.WithDropHook(func(n int) {
				m.AnalyticsEvents.WithLabelValues("dropped").Add(float64(n))
			}))
		}
		collector := analytics.NewCollector(producer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval, collectorOpts...)
		go collector.Run(ctx)
		defer func() {
			stop()
			collector.Wait()
		}()
		opts = append(opts, handler.WithTracker(collector))
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.MatchEvents)
	}

	deps := router.Deps{
		Handler: handler.New(reg, handler.Config{
			DefaultTopN:    cfg.Matching.DefaultTopN,
			MaxTopN:        cfg.Matching.MaxTopN,
			DefaultMinProb: cfg.Matching.DefaultMinProb,
		}, opts...),
		Health:  checker,
		Metrics: m,
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		go limiter.Run(ctx, time.Minute, 10*time.Minute)
		deps.Limiter = limiter
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.New(deps, cfg),
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

	slog.Info("matcher listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
