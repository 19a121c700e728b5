package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/handlers"
	"github.com/nfrund/roomrelay/internal/middleware"
)

// setupErrorHandling installs an error handler that maps domain errors to
// HTTP statuses and logs unhandled errors with a stack trace.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
		case errors.Is(err, domain.ErrNotFound):
			he = echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrValidation):
			he = echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrConflict):
			he = echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err.Error(),
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
			he = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, handlers.NewErrorResponse(he.Code, fmt.Sprint(he.Message)))
		}
		if err != nil {
			slog.Error("Failed to write error response", "error", err)
		}
	}
}
