package shared

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy describes how often a fallible operation is attempted.
//
// Delay is fixed between attempts unless Multiplier is greater than one, in which case it grows by that factor after each failure.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
	// OnRetry is called after every failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy matches the original feed and search behavior: three attempts, five seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second}
}

// Retry runs op until it succeeds or the policy is exhausted.
//
// Exhaustion returns an error wrapping [ErrTransport] and the last failure.
// Cancelling ctx stops waiting between attempts and returns ctx.Err().
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.MaxAttempts, 1)
	delay := p.Delay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return zero, err
		}

		if p.Multiplier > 1 {
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
	}

	return zero, fmt.Errorf("%w: gave up after %d attempts: %v", ErrTransport, attempts, lastErr)
}
