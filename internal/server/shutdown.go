package server

import (
	"context"
	"fmt"
	"log/slog"
)

// shutdown stops accepting requests, then stops the gateway loop and closes
// the bus. Live WebSocket connections are closed by the gateway.
func (s *Server) shutdown(cancelServices context.CancelFunc) error {
	slog.Info("Shutting down server", "timeout", s.Cfg.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.Cfg.ShutdownTimeout)
	defer cancel()

	err := s.E.Shutdown(ctx)
	cancelServices()

	select {
	case <-s.gateway.Done():
	case <-ctx.Done():
		slog.Warn("Gateway did not stop before the shutdown timeout")
	}
	s.closeBus()

	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) closeBus() {
	if s.bus == nil {
		return
	}
	if err := s.bus.Close(); err != nil {
		slog.Error("Failed to close message bus", "error", err)
	}
}
