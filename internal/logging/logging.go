package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the slog handler.
type Options struct {
	Level  string
	Format string // "text" (default) or "json"
	Output io.Writer
}

// New creates a console slog.Logger with the requested level, format and writer.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: levelFromString(opts.Level)}

	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
