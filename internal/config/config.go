// Package config handles configuration for the server,
// including defaults, a YAML overlay, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSecretKey = "dev-secret-change-me"
)

// Config holds runtime settings for the server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DBDriver: "sqlite" (DBPath) or "postgres" (DatabaseURL).
//   - SecretKey: HMAC secret for signing session tokens. Do not use the default in prod.
//   - SessionDuration: lifetime of a login without "remember me".
//   - RememberDuration: lifetime of a login with "remember me".
//   - CookieName / CookieSecure: session cookie settings.
//   - LogLevel / LogFormat: see pkg/logging.
//   - Dev: allows the built-in development SecretKey.
type Config struct {
	Addr             string        `yaml:"addr"`
	DBDriver         string        `yaml:"db_driver"`
	DBPath           string        `yaml:"db_path"`
	DatabaseURL      string        `yaml:"database_url"`
	SecretKey        string        `yaml:"secret_key"`
	SessionDuration  time.Duration `yaml:"session_duration"`
	RememberDuration time.Duration `yaml:"remember_duration"`
	CookieName       string        `yaml:"cookie_name"`
	CookieSecure     bool          `yaml:"cookie_secure"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
	Dev              bool          `yaml:"dev"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DBDriver = DriverSQLite
	c.DBPath = "./data/site.db"
	c.SecretKey = defaultSecretKey
	c.SessionDuration = 24 * time.Hour
	c.RememberDuration = 365 * 24 * time.Hour
	c.CookieName = "runlog_session"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// InsecureSecret reports whether the development secret is still in use.
func (c *Config) InsecureSecret() bool {
	return c.SecretKey == defaultSecretKey
}

// Validate checks that the settings are usable together.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("db_path is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database_url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db_driver %q", c.DBDriver))
	}

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret_key is required"))
	} else if c.InsecureSecret() && !c.Dev {
		errs = append(errs, errors.New("secret_key is the development default; set SECRET_KEY or run with -dev"))
	}
	if c.SessionDuration <= 0 || c.RememberDuration <= 0 {
		errs = append(errs, errors.New("session durations must be positive"))
	}
	if c.CookieName == "" {
		errs = append(errs, errors.New("cookie_name is required"))
	}

	return errors.Join(errs...)
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional YAML file, then the environment (including a .env file), and
// finally command-line flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := configFilePath(args)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
