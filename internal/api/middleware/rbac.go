package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/farmskeleton/backend/internal/core/auth"
)

// RBAC applies a route-level authorization requirement. It must run after
// Auth. RequireSelf compares the actor with the :id path parameter.
func RBAC(req auth.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Authorize(ActorFrom(c), c.Param("id"), req); err != nil {
				return err
			}
			return next(c)
		}
	}
}
