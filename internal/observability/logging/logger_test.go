package logging_test

import (
	"context"
	"log/slog"
	"testing"

	"feed-digest/internal/observability/logging"
)

func TestNewLoggerReturnsUsableLogger(t *testing.T) {
	logger := logging.NewLogger()
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
	// Must not panic.
	logger.Info("test message", slog.String("key", "value"))
}

func TestDebugLevelEnabledViaEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	logger := logging.NewLogger()
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled when LOG_LEVEL=debug")
	}
}

func TestDefaultLevelSuppressesDebug(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	logger := logging.NewTextLogger()
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be disabled by default")
	}
}

func TestFromContextRoundTrip(t *testing.T) {
	logger := logging.NewLogger()
	ctx := logging.WithLogger(context.Background(), logger)

	if got := logging.FromContext(ctx); got != logger {
		t.Error("FromContext did not return the logger stored in the context")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if got := logging.FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext should fall back to slog.Default()")
	}
}
