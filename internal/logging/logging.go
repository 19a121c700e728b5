package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New initializes a new slog logger writing to stdout and sets it as the default.
// format is "text" (development) or "json" (production); level is one of
// debug, info, warn or error.
func New(format, level string) (*slog.Logger, error) {
	handler, err := NewHandler(os.Stdout, format, level)
	if err != nil {
		return nil, err
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// NewHandler builds the slog handler used by New.
func NewHandler(w io.Writer, format, level string) (slog.Handler, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	switch format {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}), nil
	case "text", "":
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: true, // Adds source file and line number
		}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
