package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultGateToken = "change-me-gate-token"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	DB      DBConfig
	Auth    AuthConfig
	Sweep   SweepConfig
	Redis   RedisConfig
	Limits  RateLimitConfig
	Metrics MetricsConfig

	DefaultCurrency string   `envconfig:"DEFAULT_CURRENCY" default:"LYD"`
	CORSOrigins     []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

type DBConfig struct {
	URL         string        `envconfig:"DATABASE_URL" default:"parkly.db"`
	LockTimeout time.Duration `envconfig:"DB_LOCK_TIMEOUT" default:"5s"`
	MaxRetries  int           `envconfig:"DB_MAX_RETRIES" default:"3"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	GateToken string        `envconfig:"GATE_TOKEN" default:"change-me-gate-token"`
}

type SweepConfig struct {
	Enabled  bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
	Grace    time.Duration `envconfig:"SWEEP_GRACE" default:"15m"`
	Status   string        `envconfig:"SWEEP_STATUS" default:"canceled"`
	LockTTL  time.Duration `envconfig:"SWEEP_LOCK_TTL" default:"2m"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.Sweep.Status = strings.ToLower(strings.TrimSpace(cfg.Sweep.Status))

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.DB.URL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.DB.LockTimeout <= 0 {
		return fmt.Errorf("DB_LOCK_TIMEOUT must be > 0")
	}
	if cfg.DB.MaxRetries < 0 {
		return fmt.Errorf("DB_MAX_RETRIES must be >= 0")
	}
	if cfg.Auth.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Sweep.Interval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if cfg.Sweep.Grace < 0 {
		return fmt.Errorf("SWEEP_GRACE must be >= 0")
	}
	if cfg.Sweep.Status != "canceled" && cfg.Sweep.Status != "expired" {
		return fmt.Errorf("SWEEP_STATUS must be one of: canceled, expired")
	}
	if cfg.Sweep.LockTTL <= 0 {
		return fmt.Errorf("SWEEP_LOCK_TTL must be > 0")
	}
	if cfg.Limits.RPS <= 0 || cfg.Limits.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}
	if len(strings.TrimSpace(cfg.DefaultCurrency)) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.Auth.GateToken, defaultGateToken) {
			return fmt.Errorf("in prod/release GATE_TOKEN must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
