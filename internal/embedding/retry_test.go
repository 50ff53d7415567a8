package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakePolicy(maxAttempts int, slept *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: 100 * time.Millisecond,
		Multiplier:     2.0,
		MaxBackoff:     time.Second,
		Sleep:          func(d time.Duration) { *slept = append(*slept, d) },
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	var slept []time.Duration
	p := fakePolicy(4, &slept)

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDoRetriesTransientWithExponentialBackoff(t *testing.T) {
	var slept []time.Duration
	p := fakePolicy(4, &slept)

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("429 too many requests")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, slept)
}

func TestDoExhaustsCeilingAndReturnsLastError(t *testing.T) {
	var slept []time.Duration
	p := fakePolicy(3, &slept)

	calls := 0
	last := errors.New("503 service unavailable")
	err := p.Do(context.Background(), func() error {
		calls++
		return last
	})
	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestDoPermanentFailureAbortsImmediately(t *testing.T) {
	var slept []time.Duration
	p := fakePolicy(4, &slept)

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("invalid api key")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var slept []time.Duration
	p := fakePolicy(4, &slept)
	p.Sleep = func(time.Duration) { cancel() }

	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		return errors.New("429 too many requests")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffCappedAtCeiling(t *testing.T) {
	p := RetryPolicy{
		InitialBackoff: 100 * time.Millisecond,
		Multiplier:     2.0,
		MaxBackoff:     300 * time.Millisecond,
	}
	assert.Equal(t, 100*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 300*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 300*time.Millisecond, p.Backoff(10))
}

func TestIsTransient(t *testing.T) {
	transient := []error{
		errors.New("429 Too Many Requests"),
		errors.New("rate limit exceeded"),
		errors.New("RESOURCE_EXHAUSTED: quota exceeded"),
		errors.New("request timeout"),
		errors.New("server temporarily overloaded"),
		errors.New("503 Service Unavailable"),
		errors.New("dial tcp: connection refused"),
		context.DeadlineExceeded,
	}
	for _, err := range transient {
		assert.True(t, IsTransient(err), "expected transient: %v", err)
	}

	permanent := []error{
		nil,
		errors.New("invalid api key"),
		errors.New("model not found"),
		context.Canceled,
	}
	for _, err := range permanent {
		assert.False(t, IsTransient(err), "expected permanent: %v", err)
	}
}
