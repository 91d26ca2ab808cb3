package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestRunAggregatesStatus(t *testing.T) {
	c := NewChecker(time.Second)
	c.Critical("catalogs", ok)
	c.Optional("redis", failing)
	r := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Equal(t, "connection refused", r.Components["redis"].Error)
	assert.Equal(t, []string{"catalogs", "redis"}, c.Names())

	c.Critical("postgres", failing)
	assert.Equal(t, StatusDown, c.Run(context.Background()).Status)
}

func TestProbeTimeout(t *testing.T) {
	c := NewChecker(10 * time.Millisecond)
	c.Critical("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	r := c.Run(context.Background())
	assert.Equal(t, StatusDown, r.Status)
	assert.Contains(t, r.Components["slow"].Error, "deadline")
}

func TestHandlers(t *testing.T) {
	c := NewChecker(time.Second)
	c.Optional("kafka", failing)
	mux := http.NewServeMux()
	c.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusDegraded, report.Status)

	c.Critical("catalogs", failing)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
