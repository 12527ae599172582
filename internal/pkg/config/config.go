package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"

	AuthModeRemote = "remote"
	AuthModeLocal  = "local"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Auth    AuthConfig
	Mongo   MongoConfig
	Redis   RedisConfig

	AuditWorkers int `env:"AUDIT_WORKERS, default=2"`
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL,       default=12h"`
	Backend      string        `env:"SESSION_BACKEND,   default=redis"`
	CookieSecure bool          `env:"COOKIE_SECURE,     default=false"`
	RateLimit    float64       `env:"SIGNIN_RATE_LIMIT, default=1"`
	RateBurst    int           `env:"SIGNIN_RATE_BURST, default=5"`
}

type AuthConfig struct {
	// Mode is "remote" (HTTP authentication service) or "local" (Mongo accounts).
	Mode    string        `env:"AUTH_MODE,     default=remote"`
	BaseURL string        `env:"AUTH_BASE_URL, default=http://localhost:4000/api"`
	Timeout time.Duration `env:"AUTH_TIMEOUT,  default=10s"`
}

type MongoConfig struct {
	// URI is optional in remote mode; without it sign-in attempts are not audited.
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=almacen_admin"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects combinations the console cannot start with.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	switch c.Session.Backend {
	case SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendRedis, SessionBackendMemory, c.Session.Backend)
	}
	switch c.Auth.Mode {
	case AuthModeRemote:
		if c.Auth.BaseURL == "" {
			return errors.New("AUTH_BASE_URL is required in remote mode")
		}
	case AuthModeLocal:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI is required in local mode")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeRemote, AuthModeLocal, c.Auth.Mode)
	}
	if c.AuditWorkers < 1 {
		return errors.New("AUDIT_WORKERS must be at least 1")
	}
	return nil
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. Variables already set win over .env.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper(), ".env")
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom is Load with an explicit lookuper and .env paths.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper, dotenv ...string) (*Config, error) {
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
