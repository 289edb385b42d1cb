// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Password salt modes.
const (
	SaltModeRandom = "random"
	SaltModeFixed  = "fixed"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"3000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Flash messages and rate limiting (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Password hashing. The salt is base64 (unpadded or padded) and is only
	// used for new hashes when PasswordSaltMode is "fixed".
	PasswordSalt     string `env:"PASSWORD_SALT,required,notEmpty"`
	PasswordSaltMode string `env:"PASSWORD_SALT_MODE" envDefault:"random"`

	// Sessions
	SessionIdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"1h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"60s"`
	SessionCookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	// CSRF authentication key, 32 bytes.
	CSRFKey string `env:"CSRF_KEY,required,notEmpty"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for POST /login and POST /signup, per client IP.
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"1"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// Request body size limit in bytes (default 64KB, forms only)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SaltBytes decodes PasswordSalt.
func (c *Config) SaltBytes() ([]byte, error) {
	return DecodeSalt(c.PasswordSalt)
}

// DecodeSalt accepts both padded and unpadded standard base64.
func DecodeSalt(s string) ([]byte, error) {
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("PASSWORD_SALT is not valid base64: %w", err)
	}
	return b, nil
}

// Validate checks values env.Parse cannot express.
func (c *Config) Validate() error {
	switch c.PasswordSaltMode {
	case SaltModeRandom, SaltModeFixed:
	default:
		return fmt.Errorf("PASSWORD_SALT_MODE must be %q or %q, got %q", SaltModeRandom, SaltModeFixed, c.PasswordSaltMode)
	}

	salt, err := c.SaltBytes()
	if err != nil {
		return err
	}
	if len(salt) < 8 {
		return errors.New("PASSWORD_SALT must decode to at least 8 bytes")
	}

	if len(c.CSRFKey) != 32 {
		return fmt.Errorf("CSRF_KEY must be exactly 32 bytes, got %d", len(c.CSRFKey))
	}

	if c.SessionIdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.SessionSweepInterval <= 0 {
		return errors.New("SESSION_SWEEP_INTERVAL must be positive")
	}

	return nil
}

// Load reads an optional .env file, parses environment variables and
// returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
