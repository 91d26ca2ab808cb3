package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/kafka"
)

// Publisher sends a batch of events. *kafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// Tracker receives match events from request handlers.
type Tracker interface {
	Track(ev MatchEvent)
}

// NopTracker discards events; used when analytics is disabled.
type NopTracker struct{}

func (NopTracker) Track(MatchEvent) {}

// Collector buffers events and publishes them in batches, when the buffer
// reaches batchSize or every flushInterval. Track never blocks: once the
// buffer holds maxBuffered events new ones are dropped.
type Collector struct {
	pub           Publisher
	batchSize     int
	maxBuffered   int
	flushInterval time.Duration
	onDrop        func(n int)
	logger        *slog.Logger

	mu     sync.Mutex
	buffer []MatchEvent
	kick   chan struct{}
	done   chan struct{}
}

type CollectorOption func(*Collector)

// WithDropHook is called with the number of events discarded.
func WithDropHook(fn func(n int)) CollectorOption {
	return func(c *Collector) { c.onDrop = fn }
}

func NewCollector(pub Publisher, batchSize int, flushInterval time.Duration, opts ...CollectorOption) *Collector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	c := &Collector{
		pub:           pub,
		batchSize:     batchSize,
		maxBuffered:   batchSize * 10,
		flushInterval: flushInterval,
		onDrop:        func(int) {},
		logger:        slog.Default().With("component", "analytics-collector"),
		buffer:        make([]MatchEvent, 0, batchSize),
		kick:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Track(ev MatchEvent) {
	c.mu.Lock()
	if len(c.buffer) >= c.maxBuffered {
		c.mu.Unlock()
		c.onDrop(1)
		return
	}
	c.buffer = append(c.buffer, ev)
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()
	if full {
		select {
		case c.kick <- struct{}{}:
		default:
		}
	}
}

// Run flushes until ctx is cancelled, then makes a final flush with a short
// deadline of its own.
func (c *Collector) Run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()
	c.logger.Info("collector started", "batch_size", c.batchSize, "flush_interval", c.flushInterval)
	for {
		select {
		case <-ticker.C:
			c.Flush(ctx)
		case <-c.kick:
			c.Flush(ctx)
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.Flush(final)
			cancel()
			return
		}
	}
}

// Wait blocks until Run has returned.
func (c *Collector) Wait() { <-c.done }

// Flush publishes the buffered events. On failure the batch is put back in
// front of newer events, trimmed to the buffer bound.
func (c *Collector) Flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]MatchEvent, 0, c.batchSize)
	c.mu.Unlock()

	events := make([]kafka.Event, len(batch))
	for i, ev := range batch {
		events[i] = kafka.Event{Key: ev.Category, Value: ev}
	}
	if err := c.pub.Publish(ctx, events...); err != nil {
		c.logger.Warn("flush failed, requeueing", "events", len(batch), "error", err)
		c.mu.Lock()
		c.buffer = append(batch, c.buffer...)
		if over := len(c.buffer) - c.maxBuffered; over > 0 {
			c.buffer = c.buffer[:c.maxBuffered]
			c.mu.Unlock()
			c.onDrop(over)
			return
		}
		c.mu.Unlock()
		return
	}
	c.logger.Debug("flushed", "events", len(batch))
}

func (c *Collector) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}
