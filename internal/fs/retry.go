package fs

import (
	"context"
	"fmt"
	"time"
)

const (
	maxRetries = 5
	retryBase  = 100 * time.Millisecond
)

// retry runs fn until it succeeds, fails with a non-transient error or
// runs out of attempts. Waits double after every attempt.
func retry(ctx context.Context, opName string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isTransient(err) {
			return fmt.Errorf("%s failed: %w", opName, err)
		}

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBase * (1 << (attempt - 1))):
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", opName, maxRetries, lastErr)
}
