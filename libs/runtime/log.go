package runtime

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a JSON logger tagged with the service name. The level is read
// from LOG_LEVEL (debug, info, warn, error) and defaults to info.
func NewLogger(service string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(os.Getenv("LOG_LEVEL")),
	})
	return slog.New(h).With("service", service)
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
