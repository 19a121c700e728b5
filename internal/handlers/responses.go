package handlers

import (
	"net/http"
	"strings"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse builds an ErrorResponse whose code is derived from the
// HTTP status, e.g. 404 becomes "not_found".
func NewErrorResponse(status int, message string) ErrorResponse {
	return ErrorResponse{
		Code:    strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_"),
		Message: message,
	}
}
