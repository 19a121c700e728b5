package main

import (
	"log/slog"
	"os"

	"github.com/nfrund/roomrelay/internal/app"
	"github.com/nfrund/roomrelay/internal/config"
	"github.com/nfrund/roomrelay/internal/logging"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if _, err := logging.New(cfg.LogFormat, cfg.LogLevel); err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	s, err := app.NewServer(cfg)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := s.Start(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
