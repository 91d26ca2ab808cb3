// Package handler implements the matcher's HTTP endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/tracing"
)

// Registry resolves category ids to matching facades.
type Registry interface {
	Get(id string) (*matching.Facade, error)
	Categories() []catalog.Category
}

// Cache is the top-matches response cache.
type Cache interface {
	GetOrCompute(ctx context.Context, req cache.Request, compute func(ctx context.Context) ([]matching.Match, error)) ([]matching.Match, bool, error)
	Invalidate(ctx context.Context, category string) (int64, error)
	Stats() (hits, misses int64)
}

type Config struct {
	DefaultTopN    int
	MaxTopN        int
	DefaultMinProb float64
}

type Handler struct {
	registry Registry
	cfg      Config
	cache    Cache
	tracker  analytics.Tracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Handler)

func WithCache(c Cache) Option { return func(h *Handler) { h.cache = c } }

func WithTracker(t analytics.Tracker) Option { return func(h *Handler) { h.tracker = t } }

func WithMetrics(m *metrics.Metrics) Option { return func(h *Handler) { h.metrics = m } }

func New(reg Registry, cfg Config, opts ...Option) *Handler {
	if cfg.DefaultTopN < 1 {
		cfg.DefaultTopN = matching.DefaultTopN
	}
	if cfg.MaxTopN < cfg.DefaultTopN {
		cfg.MaxTopN = cfg.DefaultTopN
	}
	h := &Handler{
		registry: reg,
		cfg:      cfg,
		tracker:  analytics.NopTracker{},
		logger:   slog.Default().With("component", "match-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Categories lists the categories that loaded successfully.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.registry.Categories())
}

// Match returns the best catalog products for the posted item.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	category := r.PathValue("category")
	log := logger.FromContext(r.Context()).With("category", category)

	facade, err := h.registry.Get(category)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), "Unknown category: "+category)
		return
	}
	q, err := decodeQuery(r)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	topN, minProb, err := h.params(r)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	ctx, span := tracing.StartSpan(r.Context(), "match", logger.RequestID(r.Context()))
	span.SetAttr("category", category)
	compute := func(ctx context.Context) ([]matching.Match, error) {
		return facade.TopMatches(ctx, q, minProb, topN)
	}
	var (
		matches []matching.Match
		hit     bool
	)
	if h.cache != nil {
		matches, hit, err = h.cache.GetOrCompute(ctx, cache.Request{
			Category: category, Query: q, TopN: topN, MinProb: minProb,
		}, compute)
	} else {
		matches, err = compute(ctx)
	}
	span.SetAttr("cache_hit", hit)
	span.End()
	span.Log(ctx, log)

	elapsed := time.Since(start)
	ev := analytics.MatchEvent{
		Category:   category,
		QueryTitle: q.Title,
		SpecCount:  len(q.Specs),
		TopN:       topN,
		MinProb:    minProb,
		LatencyMs:  elapsed.Milliseconds(),
		CacheHit:   hit,
		RequestID:  logger.RequestID(r.Context()),
		Timestamp:  start.UTC(),
	}
	if err != nil {
		ev.Outcome = analytics.OutcomeError
		h.tracker.Track(ev)
		h.observe(category, ev.Outcome, hit, elapsed, 0)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			log.Warn("match request timed out", "elapsed_ms", elapsed.Milliseconds())
			h.writeAppError(w, apperrors.New(apperrors.ErrTimeout, http.StatusServiceUnavailable, "request timed out"))
			return
		}
		log.Error("top matches failed", "error", err)
		h.writeAppError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "failed to compute matches"))
		return
	}

	ev.Returned = len(matches)
	ev.Outcome = analytics.OutcomeEmpty
	if len(matches) > 0 {
		ev.Outcome = analytics.OutcomeMatched
		ev.BestScore = matches[0].MatchProbability
		ev.BestItemID = matches[0].ItemID
	}
	h.tracker.Track(ev)
	h.observe(category, ev.Outcome, hit, elapsed, len(matches))
	log.Debug("match served", "returned", len(matches), "cache_hit", hit, "elapsed_ms", elapsed.Milliseconds())

	h.writeJSON(w, http.StatusOK, matches)
}

func (h *Handler) observe(category, outcome string, hit bool, elapsed time.Duration, returned int) {
	if h.metrics == nil {
		return
	}
	cacheStatus := "miss"
	switch {
	case h.cache == nil:
		cacheStatus = "disabled"
	case hit:
		cacheStatus = "hit"
	}
	h.metrics.MatchRequestsTotal.WithLabelValues(category, outcome).Inc()
	h.metrics.MatchLatency.WithLabelValues(category, cacheStatus).Observe(elapsed.Seconds())
	if outcome != analytics.OutcomeError {
		h.metrics.MatchResultsCount.Observe(float64(returned))
	}
	if !hit && outcome != analytics.OutcomeError {
		if f, err := h.registry.Get(category); err == nil {
			h.metrics.PairsScoredTotal.WithLabelValues(category).Add(float64(f.Catalog().Len()))
		}
	}
}

// params reads n and minprob. n above the configured maximum is capped;
// minprob is clamped into [0, 1].
func (h *Handler) params(r *http.Request) (int, float64, error) {
	topN, minProb := h.cfg.DefaultTopN, h.cfg.DefaultMinProb
	query := r.URL.Query()
	if v := query.Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, &ValidationError{Fields: map[string]string{"n": "query param 'n' must be a positive integer"}}
		}
		topN = min(n, h.cfg.MaxTopN)
	}
	if v := query.Get("minprob"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p != p {
			return 0, 0, &ValidationError{Fields: map[string]string{"minprob": "query param 'minprob' must be a float"}}
		}
		minProb = max(0, min(1, p))
	}
	return topN, minProb, nil
}

// CacheStats reports cache hit and miss counts since start.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	hits, misses := h.cache.Stats()
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"enabled":   true,
		"hits":      hits,
		"misses":    misses,
		"hit_ratio": ratio,
	})
}

// CacheInvalidate drops cached responses, optionally for one category given
// by the category query parameter.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "cache is disabled")
		return
	}
	category := r.URL.Query().Get("category")
	if category != "" {
		if _, err := h.registry.Get(category); err != nil {
			h.writeError(w, http.StatusNotFound, "Unknown category: "+category)
			return
		}
	}
	n, err := h.cache.Invalidate(r.Context(), category)
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "category", category, "error", err)
		h.writeError(w, http.StatusBadGateway, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": n, "category": category})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		h.writeJSON(w, http.StatusBadRequest, ve)
		return
	}
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		h.writeError(w, ae.StatusCode, ae.Message)
		return
	}
	h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
