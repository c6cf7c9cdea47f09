// Package logging provides the structured logger used across the service.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog with the service's default JSON handler configuration.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger writing JSON to stdout. The level is taken
// from OPSDESK_LOG_LEVEL (debug, info, warn, error), defaulting to info.
func NewLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: levelFromEnv(),
		})),
	}
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("OPSDESK_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
