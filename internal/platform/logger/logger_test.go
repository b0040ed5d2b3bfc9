package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/svenhuster/spacecode/internal/config"
)

func TestSetupParsesLogLevel(t *testing.T) {
	// Not parallel: Setup mutates the process default logger.
	original := slog.Default()
	defer slog.SetDefault(original)

	testCases := []struct {
		name     string
		level    string
		logsAt   slog.Level
		quietsAt slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info level", "info", slog.LevelInfo, slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn, slog.LevelInfo},
		{"error level", "error", slog.LevelError, slog.LevelWarn},
		{"mixed case", "WARN", slog.LevelWarn, slog.LevelInfo},
		{"invalid falls back to info", "verbose", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{LogLevel: tc.level})
			if err != nil {
				t.Fatalf("Setup returned error: %v", err)
			}
			if log == nil {
				t.Fatal("Setup returned nil logger")
			}

			ctx := context.Background()
			if !log.Enabled(ctx, tc.logsAt) {
				t.Errorf("Expected level %v to be enabled", tc.logsAt)
			}
			if log.Enabled(ctx, tc.quietsAt) {
				t.Errorf("Expected level %v to be disabled", tc.quietsAt)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel() // Enable parallel execution

	logger, logBuf := GetTestLogger(t)
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx).Info("from context", slog.String("component", "test"))
	AssertLogContains(t, logBuf, "from context")
	AssertLogField(t, logBuf, "component", "test")

	// Without a stored logger, the default is returned rather than nil.
	if FromContext(context.Background()) == nil {
		t.Error("Expected the default logger for an empty context")
	}
	if FromContext(nil) == nil { //nolint:staticcheck // nil context fallback is the point
		t.Error("Expected the default logger for a nil context")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel() // Enable parallel execution

	fallback, logBuf := GetTestLogger(t)

	FromContextOrDefault(context.Background(), fallback).Info("fallback used")
	AssertLogContains(t, logBuf, "fallback used")

	stored, storedBuf := GetTestLogger(t)
	ctx := WithLogger(context.Background(), stored)
	FromContextOrDefault(ctx, fallback).Info("stored used")
	AssertLogContains(t, storedBuf, "stored used")
}
