package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/farmskeleton/backend/internal/api"
	"github.com/farmskeleton/backend/internal/api/handler"
	"github.com/farmskeleton/backend/internal/bootstrap"
	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/ports"
	"github.com/farmskeleton/backend/internal/core/service"
	"github.com/farmskeleton/backend/internal/infrastructure/config"
	"github.com/farmskeleton/backend/internal/infrastructure/db/memory"
	mongodb "github.com/farmskeleton/backend/internal/infrastructure/db/mongo"
	redisdb "github.com/farmskeleton/backend/internal/infrastructure/db/redis"
	"github.com/farmskeleton/backend/internal/infrastructure/queue"
	"github.com/farmskeleton/backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "farm-backend",
		Env:     cfg.Env,
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	eventRepo := mongodb.NewEventRepository(db)
	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("auth event indexes not created")
	}

	checks := map[string]handler.Check{"mongodb": mongodb.PingCheck(db)}

	var (
		revocationStore ports.RevocationStore = memory.NewRevocationStore()
		windowStore     ports.WindowStore     = memory.NewWindowStore()
		attemptStore    ports.AttemptStore    = memory.NewAttemptStore()
	)
	if cfg.StateBackend == config.BackendRedis {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		revocationStore = redisdb.NewRevocationStore(rdb)
		windowStore = redisdb.NewWindowStore(rdb)
		attemptStore = redisdb.NewAttemptStore(rdb)
		checks["redis"] = redisdb.PingCheck(rdb)
	}
	log.Info().Str("backend", cfg.StateBackend).Msg("auth state store selected")

	clock := func() time.Time { return time.Now().UTC() }
	hasher := auth.NewPasswordHasher(0)
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.AccessTokenTTL, clock)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	revocations := auth.NewRevocationRegistry(revocationStore, clock)

	if err := bootstrap.EnsureAdmin(ctx, cfg.Admin, userRepo, hasher, logger.Named("bootstrap")); err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(eventRepo, logger.Named("audit")), logger.Named("audit"))

	ipExtractor, err := api.ClientIPExtractor(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	deps := api.Deps{
		Auth: service.NewAuthService(service.AuthDeps{
			Users:       userRepo,
			Hasher:      hasher,
			Tokens:      tokens,
			Revocations: revocations,
			Lockout:     auth.NewLockoutPolicy(attemptStore, cfg.Auth.MaxFailedAttempts, cfg.Auth.LockoutDuration),
			Audit:       dispatcher,
			Clock:       clock,
			Log:         logger.Named("auth"),
		}),
		Users:         service.NewUserService(userRepo, hasher, dispatcher, logger.Named("users")),
		Authenticator: auth.NewAuthenticator(tokens, revocations, userRepo),
		CSRF:          auth.NewCSRFGuard(cfg.Auth.TrustedOrigins),
		IPExtractor:   ipExtractor,
		Clock:         clock,
		HealthChecks:  checks,
		Log:           logger.Named("http"),
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = auth.NewRateLimiter(windowStore, cfg.RateLimit.Window, cfg.RateLimit.Max)
	}
	e := api.NewRouter(deps)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	return serve(ctx, e, ":"+cfg.Port, dispatcher)
}

// serve runs the HTTP server and the audit dispatcher until ctx is done, then
// shuts both down.
func serve(ctx context.Context, e *echo.Echo, addr string, dispatcher *queue.Dispatcher) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
