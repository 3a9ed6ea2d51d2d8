package api

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/api/handler"
	"github.com/farmskeleton/backend/internal/api/middleware"
	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is wired with.
type Deps struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Authenticator middleware.Authenticator
	CSRF          middleware.OriginChecker
	RateLimiter   middleware.Limiter // optional; nil disables per-IP limiting
	IPExtractor   echo.IPExtractor   // optional; defaults to the socket peer
	Clock         func() time.Time
	HealthChecks  map[string]handler.Check
	Log           zerolog.Logger
}

// ClientIPExtractor returns how the client IP is derived. With no trusted
// proxies the socket peer is used and forwarding headers are ignored;
// otherwise X-Forwarded-For is honoured only through the listed CIDRs.
func ClientIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(network))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.IPExtractor = d.IPExtractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.CSRF(d.CSRF, skipProbes, d.Log))
	if d.RateLimiter != nil {
		e.Use(middleware.RateLimit(d.RateLimiter, d.Clock, skipProbes, d.Log))
	}

	requireAuth := middleware.Auth(d.Authenticator)
	optionalAuth := middleware.OptionalAuth(d.Authenticator)

	// --- Root and probes ---
	health := handler.NewHealthHandler(d.HealthChecks)
	e.GET("/", health.Welcome)
	e.GET("/health", health.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	authGroup := e.Group("/auth")
	authGroup.POST("/signin", authHandler.SignIn)
	authGroup.POST("/signout", authHandler.SignOut, requireAuth)

	// --- User routes ---
	userHandler := handler.NewUserHandler(d.Users)
	users := e.Group("/api/users")
	users.POST("", userHandler.Create, optionalAuth)
	users.GET("", userHandler.List, requireAuth, middleware.RBAC(auth.RequireAdmin))
	users.GET("/:id", userHandler.Get, requireAuth)
	users.PUT("/:id", userHandler.Update, requireAuth)
	users.DELETE("/:id", userHandler.Delete, requireAuth)

	return e
}

// skipProbes exempts health and metrics endpoints from CSRF and rate limiting.
func skipProbes(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health")
}
