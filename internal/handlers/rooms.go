package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/rendering"
	"github.com/nfrund/roomrelay/internal/rooms"
	"github.com/nfrund/roomrelay/internal/view"
)

// RoomDirectory is the read side of the room registry.
type RoomDirectory interface {
	Snapshot() []rooms.Summary
	GetUsersInRoom(room string) []domain.User
}

// RoomsHandler serves the read-only room endpoints.
type RoomsHandler struct {
	directory RoomDirectory
	renderer  rendering.Renderer
}

// NewRoomsHandler creates a new rooms handler.
func NewRoomsHandler(directory RoomDirectory, renderer rendering.Renderer) *RoomsHandler {
	return &RoomsHandler{
		directory: directory,
		renderer:  renderer,
	}
}

// ListRooms returns every active room and its members as JSON.
func (h *RoomsHandler) ListRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.directory.Snapshot())
}

// ListUsers returns the members of one room as JSON. An unknown room is
// reported as not found.
func (h *RoomsHandler) ListUsers(c echo.Context) error {
	var req RoomUsersRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.Room = rooms.Normalize(req.Room)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room name")
	}

	users := h.directory.GetUsersInRoom(req.Room)
	if len(users) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, domain.ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, users)
}

// RoomsPage renders the HTML status page.
func (h *RoomsHandler) RoomsPage(c echo.Context) error {
	return h.renderer.RenderPage(c, http.StatusOK, view.RoomsPage(h.directory.Snapshot()))
}

// RoomsFragment renders the room table polled by the status page.
func (h *RoomsHandler) RoomsFragment(c echo.Context) error {
	return h.renderer.RenderPage(c, http.StatusOK, view.RoomsFragment(h.directory.Snapshot()))
}
