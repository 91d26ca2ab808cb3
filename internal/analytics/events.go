// Package analytics records what the matcher served. The matcher publishes
// one MatchEvent per request to Kafka; the analytics service consumes them,
// keeps windowed aggregates in memory and snapshots them to Postgres.
package analytics

import "time"

// Outcome of a match request.
const (
	OutcomeMatched = "matched"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

type MatchEvent struct {
	Category   string    `json:"category"`
	QueryTitle string    `json:"query_title"`
	SpecCount  int       `json:"spec_count"`
	TopN       int       `json:"top_n"`
	MinProb    float64   `json:"min_prob"`
	Returned   int       `json:"returned"`
	BestScore  float64   `json:"best_score"`
	BestItemID string    `json:"best_item_id,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Outcome    string    `json:"outcome"`
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
