package service

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy retries an operation with a per-attempt timeout and a
// configurable delay between attempts.
type RetryPolicy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	// Delay returns how long to wait before the given attempt (1-based).
	Delay func(attempt int) time.Duration
	// Retryable reports whether the error is worth another attempt.
	// A nil predicate retries everything.
	Retryable func(err error) bool
}

// LinearBackoff returns a Delay func that waits base*attempt.
func LinearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Do runs fn until it succeeds, the attempts are exhausted, or the parent
// context is cancelled. The last error is returned wrapped with the attempt
// count.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && p.Delay != nil {
			select {
			case <-time.After(p.Delay(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
