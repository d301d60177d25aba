// Package retry provides retry logic with linear backoff.
// It helps handle transient failures gracefully by automatically retrying failed operations.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SleepFunc waits for the given duration or until the context is done.
// Tests inject a recording implementation so backoff behavior can be
// asserted without real sleeping.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// BaseDelay is the delay unit for linear backoff. The wait before
	// attempt n+1 is BaseDelay * n.
	BaseDelay time.Duration

	// Sleep overrides the sleeping primitive. Nil selects the default
	// time.After based implementation.
	Sleep SleepFunc
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
	}
}

// SummarizeConfig returns configuration for summarization API calls.
// Moderate retry due to cost considerations.
func SummarizeConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

// Delay returns the backoff delay inserted after the given failed
// attempt (1-based): BaseDelay * attempt. It is pure so tests can
// verify the schedule independent of the sleeping primitive.
func Delay(cfg Config, attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return cfg.BaseDelay * time.Duration(attempt)
}

// WithLinearBackoff executes fn with retry logic and linear backoff.
// Every failure is considered transient and retried, including an
// attempt that ran into its own per-call deadline; only ctx itself
// being done aborts the loop. It returns nil as soon as fn succeeds,
// or an error wrapping the last failure once all attempts are
// exhausted.
func WithLinearBackoff(ctx context.Context, cfg Config, fn func() error) error {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = defaultSleep
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()

		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt))
			}
			return nil
		}

		// An attempt error matching a context error may come from the
		// attempt's own deadline; abort only when the caller's context
		// is the one that is done.
		if ctx.Err() != nil {
			if errors.Is(lastErr, ctx.Err()) {
				return lastErr
			}
			return ctx.Err()
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := Delay(cfg, attempt)
		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry aborted: %w", err)
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}

// defaultSleep waits with context cancellation support.
func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
