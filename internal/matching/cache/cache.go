// Package cache keeps top-matches responses in Redis. Concurrent identical
// requests share one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/tokenizer"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/redis"
)

const (
	keyPrefix = "pm:top:"

	DefaultComputeTimeout = 30 * time.Second
)

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Request identifies a cacheable top-matches call.
type Request struct {
	Category string
	Query    matching.Query
	TopN     int
	MinProb  float64
}

// Key hashes the request. Titles are compared by their default tokens, which
// every configured tokenizer only post-processes, so titles that tokenise
// identically share a key. Specifics compare independent of key order and
// key case.
func (r Request) Key() string {
	var b strings.Builder
	b.WriteString(r.Category)
	b.WriteByte(0)
	b.WriteString(strings.Join(tokenizer.Default.Text(r.Query.Title), " "))
	b.WriteByte(0)
	specs := make(map[string]string, len(r.Query.Specs))
	for k, v := range r.Query.Specs {
		specs[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for _, k := range slices.Sorted(maps.Keys(specs)) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(specs[k])
		b.WriteByte(';')
	}
	b.WriteByte(0)
	if r.Query.Description != nil {
		b.WriteString(*r.Query.Description)
	}
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(r.TopN))
	b.WriteByte(0)
	b.WriteString(strconv.FormatFloat(r.MinProb, 'g', -1, 64))
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s%s:%x", keyPrefix, r.Category, sum[:16])
}

type MatchCache struct {
	store   Store
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
	onHit   func()
	onMiss  func()
	logger  *slog.Logger
}

type Option func(*MatchCache)

// WithComputeTimeout bounds a shared computation. It runs detached from the
// caller that started it, so this is its only deadline.
func WithComputeTimeout(d time.Duration) Option {
	return func(c *MatchCache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCounters registers callbacks for hits and misses, typically
// Prometheus counters.
func WithCounters(onHit, onMiss func()) Option {
	return func(c *MatchCache) {
		c.onHit, c.onMiss = onHit, onMiss
	}
}

func New(store Store, ttl time.Duration, opts ...Option) *MatchCache {
	c := &MatchCache{
		store:   store,
		ttl:     ttl,
		timeout: DefaultComputeTimeout,
		onHit:   func() {},
		onMiss:  func() {},
		logger:  slog.Default().With("component", "match-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a cached response. Redis errors count as misses.
func (c *MatchCache) Get(ctx context.Context, req Request) ([]matching.Match, bool) {
	key := req.Key()
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.ErrMiss) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var out []matching.Match
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.Warn("cache entry unreadable", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	c.onHit()
	return out, true
}

func (c *MatchCache) miss() {
	c.misses.Add(1)
	c.onMiss()
}

func (c *MatchCache) Set(ctx context.Context, req Request, matches []matching.Match) {
	key := req.Key()
	data, err := json.Marshal(matches)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute serves req from the cache or runs compute once for all
// concurrent callers with the same key. The bool reports a cache hit.
// Each caller stops waiting when its own ctx is done; the shared
// computation keeps running for the others.
func (c *MatchCache) GetOrCompute(
	ctx context.Context,
	req Request,
	compute func(ctx context.Context) ([]matching.Match, error),
) ([]matching.Match, bool, error) {
	if out, ok := c.Get(ctx, req); ok {
		return out, true, nil
	}
	ch := c.group.DoChan(req.Key(), func() (any, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		out, err := compute(cctx)
		if err != nil {
			return nil, err
		}
		c.Set(cctx, req, out)
		return out, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]matching.Match), false, nil
	}
}

// Invalidate drops cached responses of one category, or of all categories
// when category is empty.
func (c *MatchCache) Invalidate(ctx context.Context, category string) (int64, error) {
	prefix := keyPrefix
	if category != "" {
		prefix += category + ":"
	}
	n, err := c.store.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return n, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "category", category, "keys_deleted", n)
	return n, nil
}

func (c *MatchCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
