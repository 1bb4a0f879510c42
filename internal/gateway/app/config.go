package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Session registry backends.
const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Issuer         string `envconfig:"FIREGATE_ISSUER" default:"firegate"`
	BootstrapToken string `envconfig:"BOOTSTRAP_TOKEN"` // Optional: enables POST /v1/bootstrap
	NumKeys        int    `envconfig:"FIREGATE_NUM_KEYS" default:"3"`

	DatabaseFile string `envconfig:"FIREGATE_DATABASE_FILE" default:"firegate.db"`
	PepperFile   string `envconfig:"FIREGATE_PEPPER_FILE" default:"pepper"`

	SessionTTL        time.Duration `envconfig:"FIREGATE_SESSION_TTL" default:"8h"`
	PasswordChangeTTL time.Duration `envconfig:"FIREGATE_PASSWORD_CHANGE_TTL" default:"15m"`
	CookieName        string        `envconfig:"FIREGATE_COOKIE_NAME" default:"firegate_session"`
	CookieSecure      bool          `envconfig:"FIREGATE_COOKIE_SECURE" default:"true"`

	// KeyRotationInterval retires the oldest signing key on this schedule. Zero disables rotation.
	KeyRotationInterval time.Duration `envconfig:"FIREGATE_KEY_ROTATION_INTERVAL" default:"24h"`

	// SessionBackend selects where revocable sessions live (sqlite, redis).
	SessionBackend string `envconfig:"FIREGATE_SESSION_BACKEND" default:"sqlite"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix    string `envconfig:"REDIS_PREFIX" default:"firegate"`

	Env                  string        `envconfig:"ENV" default:"dev"` // dev, staging, prod
	LogLevel             string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat            string        `envconfig:"LOG_FORMAT" default:"json"`
	Port                 int           `envconfig:"PORT" default:"8080"`
	ShutdownGracePeriod  time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`
	HousekeepingInterval time.Duration `envconfig:"HOUSEKEEPING_INTERVAL" default:"1h"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Issuer == "" {
		errs = append(errs, errors.New("FIREGATE_ISSUER must not be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("FIREGATE_SESSION_TTL must be positive"))
	}
	if c.PasswordChangeTTL <= 0 {
		errs = append(errs, errors.New("FIREGATE_PASSWORD_CHANGE_TTL must be positive"))
	}
	if c.KeyRotationInterval < 0 {
		errs = append(errs, errors.New("FIREGATE_KEY_ROTATION_INTERVAL must not be negative"))
	}
	switch c.SessionBackend {
	case SessionBackendSQLite, SessionBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("FIREGATE_SESSION_BACKEND must be %s or %s, got %q",
			SessionBackendSQLite, SessionBackendRedis, c.SessionBackend))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether HTTPS-only security headers apply.
func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}
