package logging

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON at info level in production, text at
// debug level everywhere else.
func New(env, service string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case "prod", "production":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	}

	return slog.New(handler).With("service", service)
}
