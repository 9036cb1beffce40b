package monitor

import (
	"context"
	"time"
)

// RetryConfig bounds the write-retry policy: a fixed attempt budget
// with a linearly growing delay (attempt number × base delay).
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// runWrite executes one retry unit. The gate is re-checked before
// every attempt; a not-ready gate consumes the attempt. Permanent
// errors surface immediately. After the attempt budget is spent the
// last failure is returned, so a write is never silently dropped.
func (coordinator *Coordinator) runWrite(ctx context.Context, operation func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= coordinator.Retry.MaxAttempts; attempt++ {
		if !coordinator.gate.Ready() {
			lastErr = ErrStoreNotReady
		} else if err := operation(ctx); err == nil {
			return nil
		} else if isPermanent(err) {
			return err
		} else {
			lastErr = err
		}

		if attempt < coordinator.Retry.MaxAttempts {
			if err := sleepContext(ctx, time.Duration(attempt)*coordinator.Retry.BaseDelay); err != nil {
				return lastErr
			}
		}
	}

	return lastErr
}

func sleepContext(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
