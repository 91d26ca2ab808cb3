// Package kafka wraps segmentio/kafka-go. Values travel as JSON; the
// producer sits behind a circuit breaker so a broker outage fails fast.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/resilience"
)

// Event is one message to publish. Key selects the partition.
type Event struct {
	Key   string
	Value any
}

// messageWriter is the part of kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer  messageWriter
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string, breaker resilience.BreakerConfig) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           20 * time.Millisecond,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newProducer(w, topic, breaker)
}

func newProducer(w messageWriter, topic string, breaker resilience.BreakerConfig) *Producer {
	return &Producer{
		writer:  w,
		breaker: resilience.NewCircuitBreaker("kafka:"+topic, breaker),
		logger:  slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Publish writes events in one call. Events whose value cannot be encoded
// are logged and left out.
func (p *Producer) Publish(ctx context.Context, events ...Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e.Value)
		if err != nil {
			p.logger.Error("dropping unencodable event", "key", e.Key, "error", err)
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(e.Key), Value: value})
	}
	if len(msgs) == 0 {
		return nil
	}
	err := p.breaker.Execute(func() error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("publishing %d messages: %w", len(msgs), err)
	}
	p.logger.Debug("published", "messages", len(msgs))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
