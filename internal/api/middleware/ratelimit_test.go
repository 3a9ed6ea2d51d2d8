package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/infrastructure/db/memory"
)

func TestRateLimit_PerIP(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	limiter := auth.NewRateLimiter(memory.NewWindowStore(), time.Minute, 10)
	mw := RateLimit(limiter, clock, nil, zerolog.Nop())

	e := echo.New()
	hit := func(ip string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		c := e.NewContext(req, httptest.NewRecorder())
		return mw(func(echo.Context) error { return nil })(c)
	}

	for i := 0; i < 10; i++ {
		if err := hit("10.0.0.1"); err != nil {
			t.Fatalf("request %d: unexpected error %v", i+1, err)
		}
	}
	if err := hit("10.0.0.1"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("11th request: expected ErrRateLimited, got %v", err)
	}
	if err := hit("10.0.0.2"); err != nil {
		t.Fatalf("other client must not be limited: %v", err)
	}

	now = now.Add(time.Minute)
	if err := hit("10.0.0.1"); err != nil {
		t.Fatalf("expected window to have moved on, got %v", err)
	}
}
