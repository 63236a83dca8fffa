package docdex

import (
	"context"
	"time"
)

// DefaultRetryDelays returns the backoff delays between embedding backend
// attempts: 1s, 2s, 4s. The total attempt ceiling is len(delays)+1.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryWithDelays runs fn with bounded backoff. Each failure sleeps through
// the next delay before retrying; exhausting the delays returns the last
// error. Context cancellation stops retrying immediately.
func RetryWithDelays[T any](ctx context.Context, delays []time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	maxAttempts := len(delays) + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return zero, lastErr
}
