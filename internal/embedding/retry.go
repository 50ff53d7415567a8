// Package embedding holds the retry policy shared by embedding clients.
package embedding

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RetryPolicy is an explicit bounded-iteration retry schedule for transient
// upstream failures. Sleep is injectable so the schedule can be tested with
// a fake clock; nil means time.Sleep.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
	MaxBackoff     time.Duration
	Sleep          func(time.Duration)
}

// DefaultRetryPolicy bounds transient retries to a few seconds in total.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    4,
		InitialBackoff: 500 * time.Millisecond,
		Multiplier:     2.0,
		MaxBackoff:     8 * time.Second,
	}
}

// Backoff returns the wait before retry number attempt (zero-based),
// exponential and capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := float64(p.InitialBackoff)
	for i := 0; i < attempt; i++ {
		d *= p.Multiplier
	}
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	return time.Duration(d)
}

// Do runs fn up to MaxAttempts times, backing off between attempts.
// Permanent failures abort immediately; once the ceiling is exhausted the
// last error is returned — never swallowed, a silent drop would leave a
// passage without its required vector.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			sleep(p.Backoff(attempt - 1))
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
	}
	return err
}

// IsTransient reports whether an upstream failure is worth retrying: rate
// limits, exhausted quota windows, timeouts and 5xx conditions.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	e := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429",
		"rate limit",
		"quota",
		"resource_exhausted",
		"timeout",
		"deadline exceeded",
		"temporarily",
		"unavailable",
		"connection refused",
		"connection reset",
		"500",
		"502",
		"503",
	} {
		if strings.Contains(e, marker) {
			return true
		}
	}
	return false
}
