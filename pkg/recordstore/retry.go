package recordstore

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times with a fixed delay between
// tries, stopping early on success or context cancellation. Used on
// the pulse task write path only; every other caller gets one shot
// per sync run.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
