//go:build integration

// Package integration runs the Postgres and Redis backed stores against real
// servers started with testcontainers.
//
// Run with:
//
//	go test -v -tags=integration ./test/integration/...
package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/resilience"
)

// startPostgres runs a throwaway database and returns a client for it. The
// test is skipped when no container runtime is available.
func startPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("product_matching_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping integration test: postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	client := postgres.FromDB(db)
	t.Cleanup(func() { client.Close() })

	require.Eventually(t, func() bool {
		return client.Ping(ctx) == nil
	}, 30*time.Second, 100*time.Millisecond)
	return client
}

// startRedis runs a throwaway Redis and returns the breaker-wrapped client.
func startRedis(t *testing.T) (*pkgredis.Client, goredis.UniversalClient) {
	t.Helper()
	ctx := context.Background()
	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping integration test: redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)
	rdb := goredis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	return pkgredis.Wrap(rdb, resilience.BreakerConfig{FailureThreshold: 5, Cooldown: time.Second, HalfOpenProbes: 1}), rdb
}
