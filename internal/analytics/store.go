package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Schema creates the snapshot table.
const Schema = `CREATE TABLE IF NOT EXISTS match_analytics_snapshots (
	id           BIGSERIAL PRIMARY KEY,
	window_start TIMESTAMPTZ NOT NULL,
	captured_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	requests     BIGINT NOT NULL,
	data         JSONB NOT NULL
)`

type Snapshot struct {
	ID         int64     `json:"id"`
	CapturedAt time.Time `json:"captured_at"`
	Stats      Stats     `json:"stats"`
}

// Store persists aggregator snapshots.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, logger: slog.Default().With("component", "analytics-store")}
}

func (s *Store) Save(ctx context.Context, stats Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_analytics_snapshots (window_start, captured_at, requests, data)
		VALUES ($1, $2, $3, $4)`,
		stats.WindowStart, time.Now().UTC(), stats.Requests, string(data))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved", "requests", stats.Requests)
	return nil
}

// List returns up to limit snapshots, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, captured_at, data FROM match_analytics_snapshots
		ORDER BY captured_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var (
			snap Snapshot
			data []byte
		)
		if err := rows.Scan(&snap.ID, &snap.CapturedAt, &data); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		if err := json.Unmarshal(data, &snap.Stats); err != nil {
			s.logger.Warn("skipping unreadable snapshot", "id", snap.ID, "error", err)
			continue
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Latest returns the newest snapshot, or nil when there is none.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	var (
		snap Snapshot
		data []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, captured_at, data FROM match_analytics_snapshots
		ORDER BY captured_at DESC, id DESC LIMIT 1`).Scan(&snap.ID, &snap.CapturedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap.Stats); err != nil {
		return nil, fmt.Errorf("decoding snapshot %d: %w", snap.ID, err)
	}
	return &snap, nil
}

// Snapshotter saves the aggregator every interval and rotates its window
// once window has elapsed. A final snapshot is written on shutdown.
type Snapshotter struct {
	agg   *Aggregator
	saver interface {
		Save(context.Context, Stats) error
	}
	interval time.Duration
	window   time.Duration
	logger   *slog.Logger
}

func NewSnapshotter(agg *Aggregator, saver interface {
	Save(context.Context, Stats) error
}, interval, window time.Duration) *Snapshotter {
	return &Snapshotter{
		agg:      agg,
		saver:    saver,
		interval: interval,
		window:   window,
		logger:   slog.Default().With("component", "analytics-snapshotter"),
	}
}

func (s *Snapshotter) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.saver.Save(final, s.agg.Stats()); err != nil {
				s.logger.Error("final snapshot failed", "error", err)
			}
			cancel()
			return
		}
	}
}

func (s *Snapshotter) tick(ctx context.Context) {
	stats := s.agg.Stats()
	if s.window > 0 && s.agg.now().Sub(stats.WindowStart) >= s.window {
		stats = s.agg.Rotate()
	}
	if err := s.saver.Save(ctx, stats); err != nil {
		s.logger.Error("snapshot failed", "error", err)
	}
}
