package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/farmskeleton/backend/internal/api/metrics"
	"github.com/farmskeleton/backend/internal/core/domain"
)

// ActorKey is the echo.Context key holding the authenticated *domain.Actor.
const ActorKey = "actor"

// Authenticator resolves a bearer token into the acting user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Actor, error)
}

// Auth requires a valid bearer token and injects the actor into context.
func Auth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("unauthenticated").Inc()
				return err
			}
			if err := authenticate(c, a, token); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalAuth injects the actor when an Authorization header is present and
// lets anonymous requests through. A header that is present but unusable is
// still rejected.
func OptionalAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			token, err := bearerToken(header)
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("unauthenticated").Inc()
				return err
			}
			if err := authenticate(c, a, token); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// ActorFrom returns the actor injected by Auth, or nil for anonymous requests.
func ActorFrom(c echo.Context) *domain.Actor {
	actor, _ := c.Get(ActorKey).(*domain.Actor)
	return actor
}

func authenticate(c echo.Context, a Authenticator, token string) error {
	actor, err := a.Authenticate(c.Request().Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			metrics.TokenRejectionsTotal.WithLabelValues("invalid_token").Inc()
		case errors.Is(err, domain.ErrUnauthenticated):
			metrics.TokenRejectionsTotal.WithLabelValues("unauthenticated").Inc()
		}
		return err
	}
	c.Set(ActorKey, actor)
	return nil
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrUnauthenticated
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", domain.ErrUnauthenticated
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}
