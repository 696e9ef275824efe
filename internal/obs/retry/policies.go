package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// OutboxPolicy backs off slowly; publishing is retried until the broker comes back.
func OutboxPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "outbox_publish",
		Attempts: 6,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 30 * time.Second, Jitter: 0.2},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("outbox retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("outbox retries exhausted", zap.Error(err))
			}
		},
	}
}

// DashboardPolicy is used by the auto-checker for calls back into the dashboard.
func DashboardPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "dashboard_call",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 250 * time.Millisecond, Max: 2 * time.Second, Jitter: 0.1},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Debug("dashboard call failed", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
	}
}
