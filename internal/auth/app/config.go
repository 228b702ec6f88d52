package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Database drivers accepted in Config.DatabaseDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the service configuration. Values are resolved in order:
// defaults, the YAML file named by AUTH_CONFIG_FILE, then environment
// variables.
type Config struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"` // Required: HS256 signing secret
	Issuer    string `yaml:"issuer"     env:"AUTH_ISSUER"`

	AccessTokenTTLSeconds  int  `yaml:"access_token_ttl"      env:"JWT_EXPIRATION"`
	RefreshTokenTTLSeconds int  `yaml:"refresh_token_ttl"     env:"REFRESH_TOKEN_EXPIRATION"`
	RotateRefreshTokens    bool `yaml:"rotate_refresh_tokens" env:"AUTH_ROTATE_REFRESH_TOKENS"`

	PasswordHasher string `yaml:"password_hasher" env:"AUTH_PASSWORD_HASHER"` // argon2id or bcrypt
	BcryptCost     int    `yaml:"bcrypt_cost"     env:"AUTH_BCRYPT_COST"`
	PepperFile     string `yaml:"pepper_file"     env:"AUTH_PEPPER_FILE"` // argon2id only; created on first start

	DatabaseDriver   string `yaml:"database_driver"    env:"AUTH_DATABASE_DRIVER"`
	DatabaseFile     string `yaml:"database_file"      env:"AUTH_DATABASE_FILE"`
	DatabaseURL      string `yaml:"database_url"       env:"AUTH_DATABASE_URL"`
	DatabaseMaxConns int32  `yaml:"database_max_conns" env:"AUTH_DATABASE_MAX_CONNS"`

	Port                 int           `yaml:"port"                  env:"PORT"`
	Env                  string        `yaml:"env"                   env:"ENV"` // dev, staging, prod
	LogLevel             string        `yaml:"log_level"             env:"LOG_LEVEL"`
	LogFormat            string        `yaml:"log_format"            env:"LOG_FORMAT"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period" env:"SHUTDOWN_GRACE_PERIOD"`
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval" env:"HOUSEKEEPING_INTERVAL"`

	RateLimitEnabled   bool     `yaml:"rate_limit_enabled"   env:"RATE_LIMIT_ENABLED"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// AccessTokenTTL returns the access token lifetime.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSeconds) * time.Second
}

// RefreshTokenTTL returns the refresh token lifetime.
func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLSeconds) * time.Second
}

// Dev reports whether the service runs in the development environment.
func (c Config) Dev() bool { return c.Env == "dev" }

func defaultConfig() Config {
	return Config{
		Issuer:                 "security-project",
		AccessTokenTTLSeconds:  3600,
		RefreshTokenTTLSeconds: 7 * 24 * 3600,
		PasswordHasher:         cryptox.HasherArgon2id,
		BcryptCost:             10,
		PepperFile:             "pepper",
		DatabaseDriver:         DriverSQLite,
		DatabaseFile:           "auth.db",
		DatabaseMaxConns:       10,
		Port:                   3000,
		Env:                    "dev",
		LogLevel:               "info",
		LogFormat:              "json",
		ShutdownGracePeriod:    10 * time.Second,
		HousekeepingInterval:   time.Hour,
		RateLimitEnabled:       true,
	}
}

// LoadConfig resolves the configuration from AUTH_CONFIG_FILE and the process
// environment and validates it.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv("AUTH_CONFIG_FILE"), env.Options{})
}

// loadConfig reads the optional YAML file at path and overlays the variables
// opts resolves to (the process environment unless opts.Environment is set).
func loadConfig(path string, opts env.Options) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.PasswordHasher = strings.ToLower(cfg.PasswordHasher)
	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer must not be empty"))
	}
	if c.AccessTokenTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("access token ttl must be positive, got %d", c.AccessTokenTTLSeconds))
	}
	if c.RefreshTokenTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("refresh token ttl must be positive, got %d", c.RefreshTokenTTLSeconds))
	}

	switch c.PasswordHasher {
	case cryptox.HasherArgon2id, cryptox.HasherBcrypt:
	default:
		errs = append(errs, fmt.Errorf("unknown password hasher %q", c.PasswordHasher))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("database file is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DatabaseDriver))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("shutdown grace period must be positive"))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("housekeeping interval must be positive"))
	}

	return errors.Join(errs...)
}
