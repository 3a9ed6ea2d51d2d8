package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

type errorMapping struct {
	err    error
	status int
	msg    string
}

// Order matters only where one error wraps another.
var errorTable = []errorMapping{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "Not authenticated"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden: Access denied"},
	{domain.ErrCSRFRejected, http.StatusForbidden, "CSRF attack detected"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "Too many requests. Try again later."},
	{domain.ErrAccountLocked, http.StatusLocked, "Account temporarily locked. Try again later."},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{domain.ErrEmailExists, http.StatusBadRequest, "Email already registered"},
	{domain.ErrInvalidUserID, http.StatusBadRequest, "Invalid user ID format"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrInvalidRole, http.StatusUnprocessableEntity, "Invalid role"},
	{domain.ErrInvalidPassword, http.StatusUnprocessableEntity, "Invalid password"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.msg
		}
	}

	// Echo's own errors (bind failures, validation, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
