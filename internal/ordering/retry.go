package ordering

import (
	"context"
	"log/slog"
	"time"
)

// Retry runs fn until it succeeds, fails with a non-retryable error, or
// attempts run out. fn must re-read state on every call. Backoff doubles from
// 20ms between attempts.
func Retry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	baseDelay := 20 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}

		if attempt < attempts-1 {
			delay := baseDelay * (1 << attempt)
			slog.Debug("ordering operation aborted, retrying",
				"attempt", attempt+1,
				"max_attempts", attempts,
				"retry_delay", delay,
				"error", lastErr)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	slog.Warn("ordering operation aborted after all retries",
		"attempts", attempts,
		"error", lastErr)
	return lastErr
}
