package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("returns first success", func(t *testing.T) {
		calls := 0
		got, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3}, func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "ok" || calls != 1 {
			t.Errorf("expected ok after 1 call, got %q after %d", got, calls)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		var retried []int
		policy := RetryPolicy{
			MaxAttempts: 3,
			OnRetry:     func(attempt int, err error) { retried = append(retried, attempt) },
		}

		got, err := Retry(context.Background(), policy, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errBoom
			}
			return 42, nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
		if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
			t.Errorf("expected OnRetry for attempts 1 and 2, got %v", retried)
		}
	})

	t.Run("exhaustion wraps ErrTransport", func(t *testing.T) {
		calls := 0
		_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3}, func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		})
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 attempts, got %d", calls)
		}
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_, _ = Retry(context.Background(), RetryPolicy{}, func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		})
		if calls != 1 {
			t.Errorf("expected 1 attempt, got %d", calls)
		}
	})

	t.Run("cancellation interrupts the delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		policy := RetryPolicy{MaxAttempts: 5, Delay: time.Hour}

		start := time.Now()
		_, err := Retry(ctx, policy, func(context.Context) (int, error) {
			cancel()
			return 0, errBoom
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if time.Since(start) > time.Second {
			t.Error("expected retry to stop waiting after cancellation")
		}
	})
}
