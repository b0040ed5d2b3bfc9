package api

import (
	"log/slog"
	"testing"

	"github.com/svenhuster/spacecode/internal/platform/logger"
)

// testHandlerLogger returns a logger whose output stays in a buffer so
// handler tests do not pollute test output.
func testHandlerLogger(t *testing.T) *slog.Logger {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	return log
}
