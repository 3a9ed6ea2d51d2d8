package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// State backends for revocation, rate-limit and lockout bookkeeping.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Port      string `env:"PORT,       default=8000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Admin     AdminConfig

	StateBackend string `env:"STATE_BACKEND, default=memory"`
	AuditWorkers int    `env:"AUDIT_WORKERS, default=4"`

	// TrustedProxies lists CIDRs whose X-Forwarded-For is believed. When
	// empty the client IP is the socket peer.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type AuthConfig struct {
	JWTSecret         string        `env:"JWT_SECRET, required"`
	JWTAlgorithm      string        `env:"JWT_ALGORITHM,       default=HS256"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL,    default=30m"`
	TrustedOrigins    []string      `env:"TRUSTED_ORIGINS,     default=http://localhost:3000"`
	MaxFailedAttempts int           `env:"MAX_FAILED_ATTEMPTS, default=5"`
	LockoutDuration   time.Duration `env:"LOCKOUT_DURATION,    default=300s"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED, default=true"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW,  default=60s"`
	Max     int           `env:"RATE_LIMIT_MAX,     default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=farm_skeleton"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// AdminConfig seeds an administrator on startup when Email and Password are set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Name     string `env:"ADMIN_NAME, default=Administrator"`
}

// Enabled reports whether a seed admin has been configured.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// Load reads a .env file when present, then resolves configuration from the
// environment using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom resolves configuration from lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StateBackend = strings.ToLower(strings.TrimSpace(c.StateBackend))
	switch c.StateBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown STATE_BACKEND %q", c.StateBackend)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET must not be blank")
	}
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_MAX must be positive, got %d", c.RateLimit.Max)
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(strings.TrimSpace(cidr)); err != nil {
			return fmt.Errorf("config: TRUSTED_PROXIES: %w", err)
		}
	}
	return nil
}
