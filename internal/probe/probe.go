// Package probe waits for an HTTP service to report itself ready.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"syscall"
	"time"
)

var (
	// ErrTimeout is returned when the service is not ready before the deadline.
	ErrTimeout = errors.New("readiness probe timed out")
	// ErrTerminated is returned when the service stops while being probed.
	ErrTerminated = errors.New("service terminated before becoming ready")
)

const (
	DefaultInterval       = 250 * time.Millisecond
	DefaultTimeout        = 15 * time.Second
	DefaultRequestTimeout = time.Second
)

// Probe polls a URL until it answers with a 2xx status.
type Probe struct {
	Client   *http.Client
	Interval time.Duration
	Timeout  time.Duration
	Logger   *slog.Logger
}

type statusError int

func (e statusError) Error() string { return fmt.Sprintf("status %d", int(e)) }

// Wait blocks until url is ready, the deadline passes, done is closed or ctx ends.
// A 2xx answer only counts while done is still open.
func (p Probe) Wait(ctx context.Context, url string, done <-chan struct{}) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	deadline := start.Add(timeout)
	for attempt := 1; ; attempt++ {
		if closed(done) {
			return ErrTerminated
		}

		err := check(ctx, client, url)
		if err == nil {
			if closed(done) {
				return ErrTerminated
			}
			logger.DebugContext(ctx, "service ready", "url", url, "attempts", attempt, "elapsed", time.Since(start))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var status statusError
		switch {
		case errors.As(err, &status), errors.Is(err, syscall.ECONNREFUSED):
			logger.DebugContext(ctx, "service not ready yet", "url", url, "attempt", attempt, "error", err)
		default:
			logger.WarnContext(ctx, "readiness check failed, retrying", "url", url, "attempt", attempt, "error", err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w after %s (%d attempts): %w", ErrTimeout, timeout, attempt, err)
		}

		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-done:
			timer.Stop()
			return ErrTerminated
		case <-timer.C:
		}
	}
}

func check(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode)
	}
	return nil
}

func closed(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
