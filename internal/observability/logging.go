package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NoOpLogger discards everything. Used by tests and as a safe default.
var NoOpLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewLogger builds the process-wide slog logger. Level is one of
// debug|info|warn|error (case-insensitive); anything else means info.
// Output is JSON on stdout so the collector can scrape it as-is.
func NewLogger(level, environment string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler).With(
		slog.String("service", "sota-bot"),
		slog.String("environment", environment),
	)
	return logger
}
