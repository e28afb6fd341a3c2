package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/snippetlab/auth/pkg/jwtx"
)

// Config is the full environment surface of the service. Parsed once at
// startup; validation failures abort the process before anything binds.
type Config struct {
	// SigningSecret is the HS512 key. Shorter than 64 bytes is a startup
	// failure, never a runtime one.
	SigningSecret string `env:"AUTH_SIGNING_SECRET,required"`
	Issuer        string `env:"AUTH_ISSUER" envDefault:"snippet-auth"`

	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"336h"`

	RefreshCookieName     string `env:"AUTH_REFRESH_COOKIE_NAME" envDefault:"refresh_token"`
	RefreshCookiePath     string `env:"AUTH_REFRESH_COOKIE_PATH" envDefault:"/v1/auth"`
	RefreshCookieSecure   bool   `env:"AUTH_REFRESH_COOKIE_SECURE" envDefault:"true"`
	RefreshCookieSameSite string `env:"AUTH_REFRESH_COOKIE_SAMESITE" envDefault:"strict"`

	// DBDriver selects the store implementation: sqlite or postgres.
	DBDriver     string `env:"AUTH_DB_DRIVER" envDefault:"sqlite"`
	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	DatabaseURL  string `env:"DATABASE_URL"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	SentryDSN string `env:"SENTRY_DSN"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig parses and validates the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.SigningSecret) < jwtx.MinSecretBytes {
		return fmt.Errorf("AUTH_SIGNING_SECRET must be at least %d bytes, got %d",
			jwtx.MinSecretBytes, len(c.SigningSecret))
	}
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when AUTH_DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported AUTH_DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
