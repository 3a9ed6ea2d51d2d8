package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/api/metrics"
)

// OriginChecker validates a declared request origin.
type OriginChecker interface {
	Check(origin string) error
}

// CSRF rejects requests whose Origin, or Referer when Origin is absent, does
// not start with a trusted origin.
func CSRF(guard OriginChecker, skipper middleware.Skipper, log zerolog.Logger) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			req := c.Request()
			origin := req.Header.Get(echo.HeaderOrigin)
			if origin == "" {
				origin = req.Referer()
			}
			if err := guard.Check(origin); err != nil {
				metrics.CSRFRejectedTotal.Inc()
				log.Warn().
					Str("origin", origin).
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Str("client_ip", c.RealIP()).
					Msg("csrf origin rejected")
				return err
			}
			return next(c)
		}
	}
}
