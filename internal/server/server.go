package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/roomrelay/internal/config"
	"github.com/nfrund/roomrelay/internal/gateway"
	"github.com/nfrund/roomrelay/internal/handlers"
	"github.com/nfrund/roomrelay/internal/middleware"
	"github.com/nfrund/roomrelay/internal/moderation"
	"github.com/nfrund/roomrelay/internal/relay"
	"github.com/nfrund/roomrelay/internal/rendering"
	"github.com/nfrund/roomrelay/internal/rooms"
)

// Dependencies holds everything the server wires together.
type Dependencies struct {
	Config   *config.Config
	Gateway  *gateway.Gateway
	Handlers *relay.Handlers
	Registry *rooms.Registry
	Filter   *moderation.ReloadableFilter
	// Bus is closed after the HTTP server has stopped.
	Bus io.Closer
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	gateway      *gateway.Gateway
	handlers     *relay.Handlers
	registry     *rooms.Registry
	filter       *moderation.ReloadableFilter
	bus          io.Closer
	roomsHandler *handlers.RoomsHandler
}

// New creates a new Server instance.
func New(deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	renderer := rendering.NewNodeRenderer()
	e.Renderer = renderer
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	s := &Server{
		E:            e,
		Cfg:          deps.Config,
		gateway:      deps.Gateway,
		handlers:     deps.Handlers,
		registry:     deps.Registry,
		filter:       deps.Filter,
		bus:          deps.Bus,
		roomsHandler: handlers.NewRoomsHandler(deps.Registry, renderer),
	}
	s.RegisterRoutes()
	return s
}

// Registry is a getter for the server's room registry, useful for testing.
func (s *Server) Registry() *rooms.Registry {
	return s.registry
}

// startServices starts the gateway loop and, when configured, the word list
// watcher. Both stop when ctx is canceled.
func (s *Server) startServices(ctx context.Context) error {
	if err := s.gateway.Start(ctx, s.handlers); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}

	if s.Cfg.ProfanityWatch && s.Cfg.ProfanityWordsFile != "" {
		go func() {
			if err := s.filter.Watch(ctx); err != nil {
				slog.Error("Profanity word list watcher stopped", "error", err)
			}
		}()
	}
	return nil
}
