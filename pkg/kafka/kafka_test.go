package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/resilience"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "match-events", resilience.BreakerConfig{})

	err := p.Publish(context.Background(),
		Event{Key: "phones", Value: map[string]int{"n": 1}},
		Event{Key: "bad", Value: func() {}},
		Event{Key: "games", Value: map[string]int{"n": 2}},
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "phones", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"n":2}`, string(w.msgs[1].Value))

	assert.NoError(t, p.Publish(context.Background()))
}

func TestProducerBreakerOpens(t *testing.T) {
	boom := errors.New("broker down")
	w := &fakeWriter{err: boom}
	p := newProducer(w, "t", resilience.BreakerConfig{FailureThreshold: 1})

	assert.ErrorIs(t, p.Publish(context.Background(), Event{Key: "k", Value: 1}), boom)
	assert.ErrorIs(t, p.Publish(context.Background(), Event{Key: "k", Value: 1}), resilience.ErrCircuitOpen)
}

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumerRun(t *testing.T) {
	type payload struct {
		N int `json:"n"`
	}
	body, _ := json.Marshal(payload{N: 7})
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeReader{
		msgs: []kafka.Message{
			{Offset: 1, Value: body},
			{Offset: 2, Value: []byte("{not json")},
			{Offset: 3, Value: body},
		},
		cancel: cancel,
	}
	var got []int
	c := newConsumer(r, "t", JSONHandler(func(_ context.Context, p payload) error {
		got = append(got, p.N)
		return nil
	}))

	require.NoError(t, c.Run(ctx))
	assert.Equal(t, []int{7, 7}, got)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
}
