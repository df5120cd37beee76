package frontend

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/dashterm/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// StartPoller launches a goroutine that records backend health in the store,
// backing off while checks fail. The returned channel is closed once the
// goroutine exits after ctx is cancelled.
func StartPoller(ctx context.Context, store *state.Store, checker HealthChecker, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			refresh(ctx, store, checker, logger)
			if ctx.Err() != nil {
				return
			}

			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return done
}

func refresh(ctx context.Context, store *state.Store, checker HealthChecker, logger *slog.Logger) {
	err := checker.Health(ctx)
	if ctx.Err() != nil {
		return
	}
	store.RecordHealth(err)
	if err != nil {
		logger.DebugContext(ctx, "health poll failed", "error", err)
	}
}

// calculateBackoff doubles interval for every consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	backoff := interval
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
