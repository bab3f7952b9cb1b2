// Package log provides slog-based logging setup for cadenza services.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the process-wide default logger. Unknown levels fall back
// to info rather than failing startup.
func Setup(logLevel string) {
	var level slog.Level

	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
