package analytics

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// latencySamples bounds the per-window latency reservoir.
const latencySamples = 10000

type Stats struct {
	WindowStart     time.Time                `json:"window_start"`
	Requests        int64                    `json:"requests"`
	Matched         int64                    `json:"matched"`
	Empty           int64                    `json:"empty"`
	Errors          int64                    `json:"errors"`
	CacheHits       int64                    `json:"cache_hits"`
	AvgBestScore    float64                  `json:"avg_best_score"`
	AvgLatencyMs    float64                  `json:"avg_latency_ms"`
	P50LatencyMs    int64                    `json:"p50_latency_ms"`
	P95LatencyMs    int64                    `json:"p95_latency_ms"`
	P99LatencyMs    int64                    `json:"p99_latency_ms"`
	Categories      map[string]CategoryStats `json:"categories"`
	UnmatchedTitles []TitleCount             `json:"unmatched_titles"`
}

type CategoryStats struct {
	Requests     int64   `json:"requests"`
	Matched      int64   `json:"matched"`
	AvgReturned  float64 `json:"avg_returned"`
	AvgBestScore float64 `json:"avg_best_score"`
}

type TitleCount struct {
	Title string `json:"title"`
	Count int64  `json:"count"`
}

type categoryAcc struct {
	requests, matched int64
	returned          int64
	bestScoreSum      float64
}

// Aggregator folds match events into the current window.
type Aggregator struct {
	mu          sync.RWMutex
	now         func() time.Time
	windowStart time.Time
	requests    int64
	matched     int64
	empty       int64
	errors      int64
	cacheHits   int64
	bestSum     float64
	latencies   []int64
	latencyNext int
	latencySum  int64
	categories  map[string]*categoryAcc
	unmatched   map[string]int64
	logger      *slog.Logger
}

func NewAggregator() *Aggregator {
	a := &Aggregator{
		now:    time.Now,
		logger: slog.Default().With("component", "analytics-aggregator"),
	}
	a.reset()
	return a
}

func (a *Aggregator) reset() {
	a.windowStart = a.now().UTC()
	a.requests, a.matched, a.empty, a.errors, a.cacheHits = 0, 0, 0, 0, 0
	a.bestSum = 0
	a.latencies = make([]int64, 0, 1024)
	a.latencyNext = 0
	a.latencySum = 0
	a.categories = make(map[string]*categoryAcc)
	a.unmatched = make(map[string]int64)
}

// Handle records an event; it matches the kafka.JSONHandler callback shape.
func (a *Aggregator) Handle(_ context.Context, ev MatchEvent) error {
	a.Record(ev)
	return nil
}

func (a *Aggregator) Record(ev MatchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests++
	if ev.CacheHit {
		a.cacheHits++
	}
	cat := a.categories[ev.Category]
	if cat == nil {
		cat = &categoryAcc{}
		a.categories[ev.Category] = cat
	}
	cat.requests++
	cat.returned += int64(ev.Returned)

	switch ev.Outcome {
	case OutcomeError:
		a.errors++
		return
	case OutcomeMatched:
		a.matched++
		a.bestSum += ev.BestScore
		cat.matched++
		cat.bestScoreSum += ev.BestScore
	default:
		a.empty++
		if t := strings.ToLower(strings.TrimSpace(ev.QueryTitle)); t != "" {
			a.unmatched[t]++
		}
	}

	a.latencySum += ev.LatencyMs
	if len(a.latencies) < latencySamples {
		a.latencies = append(a.latencies, ev.LatencyMs)
	} else {
		a.latencies[a.latencyNext] = ev.LatencyMs
		a.latencyNext = (a.latencyNext + 1) % latencySamples
	}
}

// Stats summarises the current window.
func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.statsLocked()
}

func (a *Aggregator) statsLocked() Stats {
	s := Stats{
		WindowStart:     a.windowStart,
		Requests:        a.requests,
		Matched:         a.matched,
		Empty:           a.empty,
		Errors:          a.errors,
		CacheHits:       a.cacheHits,
		Categories:      make(map[string]CategoryStats, len(a.categories)),
		UnmatchedTitles: topTitles(a.unmatched, 10),
	}
	if a.matched > 0 {
		s.AvgBestScore = a.bestSum / float64(a.matched)
	}
	if served := a.matched + a.empty; served > 0 {
		s.AvgLatencyMs = float64(a.latencySum) / float64(served)
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		s.P50LatencyMs = percentile(sorted, 50)
		s.P95LatencyMs = percentile(sorted, 95)
		s.P99LatencyMs = percentile(sorted, 99)
	}
	for name, c := range a.categories {
		cs := CategoryStats{Requests: c.requests, Matched: c.matched}
		if c.requests > 0 {
			cs.AvgReturned = float64(c.returned) / float64(c.requests)
		}
		if c.matched > 0 {
			cs.AvgBestScore = c.bestScoreSum / float64(c.matched)
		}
		s.Categories[name] = cs
	}
	return s
}

// Rotate returns the stats of the current window and starts a new one.
func (a *Aggregator) Rotate() Stats {
	a.mu.Lock()
	s := a.statsLocked()
	a.reset()
	a.mu.Unlock()
	a.logger.Info("analytics window rotated", "requests", s.Requests, "since", s.WindowStart)
	return s
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []int64, pct int) int64 {
	idx := (pct*len(sorted)+99)/100 - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

func topTitles(counts map[string]int64, n int) []TitleCount {
	out := make([]TitleCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TitleCount{Title: t, Count: c})
	}
	slices.SortFunc(out, func(x, y TitleCount) int {
		if x.Count != y.Count {
			if x.Count > y.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(x.Title, y.Title)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
