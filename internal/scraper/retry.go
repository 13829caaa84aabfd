package scraper

import (
	"context"
	"time"
)

// sleepFunc is swapped out in tests so retries don't actually wait.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs fn up to maxAttempts times, sleeping baseDelay*attempt between
// tries (linear backoff). The last error is returned when every attempt
// fails; context cancellation aborts immediately.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	return retryWith(ctx, maxAttempts, baseDelay, sleepCtx, fn)
}

func retryWith(ctx context.Context, maxAttempts int, baseDelay time.Duration, sleep sleepFunc, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt < maxAttempts {
			if err := sleep(ctx, baseDelay*time.Duration(attempt)); err != nil {
				return err
			}
		}
	}
	return lastErr
}
