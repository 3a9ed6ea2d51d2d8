package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/farmskeleton/backend/internal/api/middleware"
	"github.com/farmskeleton/backend/internal/core/domain"
)

// currentActor returns the actor injected by the auth middleware, or
// domain.ErrUnauthenticated when the route ran without one.
func currentActor(c echo.Context) (*domain.Actor, error) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return actor, nil
}
