package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/api/metrics"
	"github.com/farmskeleton/backend/internal/core/domain"
)

// Limiter records one event per request for a key.
type Limiter interface {
	CheckAndRecord(ctx context.Context, key string, now time.Time) error
}

// RateLimit applies a per-client-IP sliding window. A failing backing store
// lets the request through and is logged.
func RateLimit(limiter Limiter, now func() time.Time, skipper middleware.Skipper, log zerolog.Logger) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			ip := c.RealIP()
			err := limiter.CheckAndRecord(c.Request().Context(), "ip:"+ip, now())
			switch {
			case errors.Is(err, domain.ErrRateLimited):
				metrics.RateLimitedTotal.Inc()
				log.Warn().Str("client_ip", ip).Str("path", c.Request().URL.Path).Msg("rate limit exceeded")
				return err
			case err != nil:
				log.Error().Err(err).Str("client_ip", ip).Msg("rate limiter unavailable")
			}
			return next(c)
		}
	}
}
