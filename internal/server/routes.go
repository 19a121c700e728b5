package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/roomrelay/internal/view"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	s.E.GET("/ws", s.gateway.Handler())

	s.E.GET("/api/rooms", s.roomsHandler.ListRooms)
	s.E.GET("/api/rooms/:room/users", s.roomsHandler.ListUsers)

	s.E.GET("/rooms", s.roomsHandler.RoomsPage)
	s.E.GET(view.FragmentPath, s.roomsHandler.RoomsFragment)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Serve the browser client.
	s.E.Static("/", s.Cfg.PublicDir)
}
