package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(3), func() error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(2), func() error {
		calls++
		return errFlaky
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 2, calls)
}

func TestRetryPermanent(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(5), func() error {
		calls++
		return Permanent(errFlaky)
	})
	assert.ErrorIs(t, err, ErrPermanent)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "op", RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour}, func() error { return errFlaky })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffBounded(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond}.withDefaults()
	for attempt := 1; attempt < 10; attempt++ {
		d := cfg.backoff(attempt)
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Unix(0, 0)
	var changes []State
	cb := NewCircuitBreaker("redis", BreakerConfig{
		FailureThreshold: 2,
		Cooldown:         time.Second,
		OnStateChange:    func(_ string, _, to State) { changes = append(changes, to) },
	})
	cb.now = func() time.Time { return now }

	fail := func() error { return errFlaky }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(fail), errFlaky)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errFlaky)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)

	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, cb.Execute(fail), errFlaky)
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Second)
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateOpen, StateHalfOpen, StateClosed}, changes)
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker("kafka", BreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(func() error { return errFlaky })
	assert.Equal(t, StateOpen, cb.State())
	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}
