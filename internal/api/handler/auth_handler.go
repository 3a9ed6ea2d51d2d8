package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmskeleton/backend/internal/api/metrics"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.authService.SignIn(c.Request().Context(), ports.SignInInput{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.RealIP(),
	})
	metrics.SignInAttemptsTotal.WithLabelValues(signInResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
	})
}

// SignOut handles POST /auth/signout. The presented token is revoked until it
// expires.
func (h *AuthHandler) SignOut(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.authService.SignOut(c.Request().Context(), actor); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Signed out successfully"})
}

func signInResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountLocked):
		return "locked"
	default:
		return "error"
	}
}
