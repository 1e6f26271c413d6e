package resilience

import (
	"context"
	"time"
)

// Retry is an explicit retry policy. It is meant to wrap idempotent
// operations only; callers decide where it applies instead of attaching
// retries ad hoc to individual functions.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

func DefaultRetry() Retry {
	return Retry{Attempts: 3, Backoff: 50 * time.Millisecond}
}

// Do runs fn until it succeeds, attempts are exhausted, or the context is
// done. The last error is returned.
func (r Retry) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && r.Backoff > 0 {
			timer := time.NewTimer(r.Backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}
