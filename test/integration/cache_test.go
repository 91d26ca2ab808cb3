//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching/cache"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/redis"
)

func request(category, title string) cache.Request {
	return cache.Request{
		Category: category,
		Query:    matching.Query{Title: title},
		TopN:     matching.DefaultTopN,
		MinProb:  matching.DefaultMinProb,
	}
}

func TestRedisClient(t *testing.T) {
	client, rdb := startRedis(t)
	ctx := context.Background()

	_, err := client.Get(ctx, "pm:absent")
	assert.ErrorIs(t, err, pkgredis.ErrMiss)

	require.NoError(t, client.Set(ctx, "pm:k", []byte("v"), time.Minute))
	v, err := client.Get(ctx, "pm:k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	ttl, err := rdb.TTL(ctx, "pm:k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestMatchCacheOnRedis(t *testing.T) {
	client, _ := startRedis(t)
	ctx := context.Background()
	c := cache.New(client, time.Minute)

	title := "Apple iPhone 6s"
	want := []matching.Match{{ItemID: "item1", Title: &title, MatchProbability: 0.91}}
	calls := 0
	compute := func(context.Context) ([]matching.Match, error) {
		calls++
		return want, nil
	}

	got, hit, err := c.GetOrCompute(ctx, request("phones", "iphone 6s"), compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, want, got)

	got, hit, err = c.GetOrCompute(ctx, request("phones", "IPHONE  6s"), compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "item1", got[0].ItemID)
	assert.Equal(t, 0.91, got[0].MatchProbability)
	assert.Equal(t, 1, calls)

	c.Set(ctx, request("phones", "galaxy"), []matching.Match{})
	c.Set(ctx, request("games", "switch"), []matching.Match{})

	n, err := c.Invalidate(ctx, "phones")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	_, ok := c.Get(ctx, request("games", "switch"))
	assert.True(t, ok)
	_, ok = c.Get(ctx, request("phones", "galaxy"))
	assert.False(t, ok)
}
