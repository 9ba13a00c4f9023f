// Package response holds the JSON helpers shared by all handlers. Success
// payloads are flat; errors are always {"error": message} so clients can
// tell "no matches" from "query failed".
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// OK sends a 200 response with data as the body.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// Error sends a JSON error body with the given status.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// BadRequest sends 400.
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends 401.
func Unauthorized(c echo.Context) error {
	return Error(c, http.StatusUnauthorized, "unauthorized")
}

// InternalError sends 500.
func InternalError(c echo.Context, message string) error {
	return Error(c, http.StatusInternalServerError, message)
}
