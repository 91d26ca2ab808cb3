// Package router mounts the matcher's routes and wraps them in the
// middleware chain.
package router

import (
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/api/handler"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/middleware"
)

type Deps struct {
	Handler *handler.Handler
	Health  *health.Checker
	Metrics *metrics.Metrics
	// Limiter is nil when rate limiting is disabled.
	Limiter middleware.Limiter
}

// New builds the HTTP handler.
//
//	POST   /api/v1/match/{category}
//	POST   /api/v1/classify/{category}
//	GET    /api/v1/categories
//	GET    /api/v1/cache/stats
//	DELETE /api/v1/cache
//	GET    /health/live, /health/ready
//
// Middleware, outermost first: RequestID, Recover, AccessLog, Metrics, CORS,
// RateLimit, Timeout, MaxBody.
func New(d Deps, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	h := d.Handler

	mux.HandleFunc("POST /api/v1/match/{category}", h.Match)
	mux.HandleFunc("POST /api/v1/classify/{category}", h.Classify)
	mux.HandleFunc("GET /api/v1/categories", h.Categories)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("DELETE /api/v1/cache", h.CacheInvalidate)
	if d.Health != nil {
		d.Health.Register(mux)
	}

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Recover,
		middleware.AccessLog,
	}
	if d.Metrics != nil {
		mws = append(mws, middleware.Metrics(d.Metrics))
	}
	mws = append(mws, middleware.CORS(cfg.CORS))
	if d.Limiter != nil {
		var onLimited func()
		if d.Metrics != nil {
			onLimited = d.Metrics.RateLimitedTotal.Inc
		}
		mws = append(mws, middleware.RateLimit(d.Limiter, onLimited))
	}
	mws = append(mws,
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
	)
	return middleware.Chain(mux, mws...)
}
