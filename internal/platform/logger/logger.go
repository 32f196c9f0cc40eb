package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the process logger on stdout. Development gets slog's text
// format; every other environment logs JSON.
func New(level slog.Level, environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, environment)
}

func NewWithWriter(w io.Writer, level slog.Level, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", "courthouse", "environment", environment)
}
