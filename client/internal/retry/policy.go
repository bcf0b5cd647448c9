// Package retry runs an operation under an explicit retry policy: a bounded
// number of attempts, a backoff schedule and a predicate deciding which
// failures are worth another attempt.
package retry

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// Defaults used when a Policy field is left zero.
const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = time.Second
	DefaultMaxInterval = 30 * time.Second
)

// Policy configures retry behaviour for one logical call.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first one.
	MaxAttempts int

	// NewBackOff returns a fresh schedule for every logical call so two calls
	// never share backoff state.
	NewBackOff func() backoff.BackOff

	// Retryable decides whether a failed attempt may be retried. Nil retries
	// every error.
	Retryable func(error) bool

	// OnRetry is invoked before each backoff wait; attempt is 1-based and
	// refers to the attempt that just failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Exponential returns a jitter-free doubling schedule starting at base:
// base, 2*base, 4*base, ... capped at maxInterval.
func Exponential(base, maxInterval time.Duration) func() backoff.BackOff {
	if base <= 0 {
		base = DefaultBaseBackoff
	}
	if maxInterval <= 0 {
		maxInterval = DefaultMaxInterval
	}
	return func() backoff.BackOff {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = base
		exp.Multiplier = 2
		exp.RandomizationFactor = 0
		exp.MaxInterval = maxInterval
		exp.MaxElapsedTime = 0 // attempts are bounded by MaxAttempts instead
		exp.Reset()
		return exp
	}
}

// Constant waits d between attempts.
func Constant(d time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff { return backoff.NewConstantBackOff(d) }
}

// DefaultPolicy is three attempts with 1s, 2s waits and no predicate.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		NewBackOff:  Exponential(DefaultBaseBackoff, DefaultMaxInterval),
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.NewBackOff == nil {
		p.NewBackOff = Exponential(DefaultBaseBackoff, DefaultMaxInterval)
	}
	return p
}

// Do runs op until it succeeds, returns a non-retryable error, or the policy
// runs out of attempts. Attempts are strictly sequential. The returned error
// is the last attempt's error unchanged, or ctx.Err() when the caller's context
// ends while waiting between attempts.
func Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) error {
	p = p.withDefaults()
	schedule := p.NewBackOff()
	schedule.Reset()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return nil
		}

		// Don't wait after the last attempt.
		if attempt == p.MaxAttempts {
			break
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := schedule.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}
