// Package redis wraps go-redis for the top-matches cache. Calls go through a
// circuit breaker so an unreachable Redis costs one fast error instead of a
// dial timeout per request.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/resilience"
)

// ErrMiss is returned by Get for an absent key.
var ErrMiss = errors.New("cache miss")

type Client struct {
	rdb     redis.UniversalClient
	breaker *resilience.CircuitBreaker
}

// NewClient dials Redis and checks the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig, breaker resilience.BreakerConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	c := Wrap(rdb, breaker)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return c, nil
}

// Wrap builds a Client around an existing go-redis client.
func Wrap(rdb redis.UniversalClient, breaker resilience.BreakerConfig) *Client {
	return &Client{
		rdb:     rdb,
		breaker: resilience.NewCircuitBreaker("redis", breaker),
	}
}

// Get returns the value stored at key, or ErrMiss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := c.breaker.Execute(func() error {
		v, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		val = v
		return err
	})
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, ErrMiss
	}
	return val, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.breaker.Execute(func() error {
		return c.rdb.Set(ctx, key, value, ttl).Err()
	})
}

// DeleteByPrefix removes every key starting with prefix and reports how many
// were removed. Keys are scanned and unlinked in batches.
func (c *Client) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	const batch = 500
	var deleted int64
	err := c.breaker.Execute(func() error {
		iter := c.rdb.Scan(ctx, 0, prefix+"*", batch).Iterator()
		keys := make([]string, 0, batch)
		flush := func() error {
			if len(keys) == 0 {
				return nil
			}
			n, err := c.rdb.Unlink(ctx, keys...).Result()
			deleted += n
			keys = keys[:0]
			return err
		}
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
			if len(keys) == batch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scanning %s*: %w", prefix, err)
		}
		return flush()
	})
	return deleted, err
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Breaker() *resilience.CircuitBreaker { return c.breaker }

func (c *Client) Close() error {
	return c.rdb.Close()
}
