package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Retry executes operations with a bounded number of attempts and a
// linearly increasing delay between them (baseDelay * attempt, not
// exponential). Attempts for one operation are strictly sequential.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Log         *slog.Logger
}

// NewRetry creates a Retry policy. Non-positive attempts default to 3,
// a zero delay defaults to 500ms, a nil logger to slog.Default().
func NewRetry(maxAttempts int, baseDelay time.Duration, log *slog.Logger) Retry {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return Retry{MaxAttempts: maxAttempts, BaseDelay: baseDelay, Log: log}
}

// Do runs fn, retrying on error until the attempt budget is exhausted.
// Every error is retried identically unless wrapped with Permanent; the
// last error is returned when all attempts fail. Context cancellation
// aborts the backoff sleep.
func (r Retry) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		r.Log.Debug("attempt starting", "op", name, "attempt", attempt, "max", r.MaxAttempts)

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			r.Log.Warn("non-retryable failure", "op", name, "attempt", attempt, "error", perm.err)
			return perm.err
		}

		r.Log.Warn("attempt failed",
			"op", name,
			"attempt", attempt,
			"max", r.MaxAttempts,
			"error", lastErr,
		)

		if attempt < r.MaxAttempts {
			delay := r.BaseDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, r.MaxAttempts, lastErr)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as non-retryable. Retry.Do returns the
// wrapped error immediately instead of consuming further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
