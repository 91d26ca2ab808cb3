// Package metrics defines the Prometheus collectors of the matching service
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	MatchRequestsTotal   *prometheus.CounterVec
	MatchLatency         *prometheus.HistogramVec
	MatchResultsCount    prometheus.Histogram
	PairsScoredTotal     *prometheus.CounterVec
	CatalogItems         *prometheus.GaugeVec
	PreprocessDuration   *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	RateLimitedTotal     prometheus.Counter
	AnalyticsEvents      *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		MatchRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_requests_total",
				Help: "Top-matches requests by category and outcome (matched, empty, error).",
			},
			[]string{"category", "outcome"},
		),
		MatchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "match_latency_seconds",
				Help:    "Top-matches latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"category", "cache_status"},
		),
		MatchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "match_results_count",
				Help:    "Number of matches returned per request.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),
		PairsScoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_pairs_scored_total",
				Help: "Catalog/query pairs passed through feature extraction and the classifier.",
			},
			[]string{"category"},
		),
		CatalogItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_items",
				Help: "Number of preprocessed catalog items per category.",
			},
			[]string{"category"},
		),
		PreprocessDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_preprocess_duration_seconds",
				Help:    "Time spent preprocessing a category catalog at startup.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"category"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of top-matches cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of top-matches cache misses.",
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter.",
			},
		),
		AnalyticsEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_events_total",
				Help: "Match events by status (published, dropped, consumed, rejected).",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.MatchRequestsTotal,
		m.MatchLatency,
		m.MatchResultsCount,
		m.PairsScoredTotal,
		m.CatalogItems,
		m.PreprocessDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RateLimitedTotal,
		m.AnalyticsEvents,
		m.CircuitBreakerState,
	)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
