package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads .env (if present) into the process environment without
// overriding variables that are already set, then overlays the recognised
// variables onto config.
func parseEnv(config *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	setString(&config.Addr, "ADDR")
	setString(&config.DBDriver, "DB_DRIVER")
	setString(&config.DBPath, "DB_PATH")
	setString(&config.DatabaseURL, "DATABASE_URL")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.CookieName, "COOKIE_NAME")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogFormat, "LOG_FORMAT")

	if err := setDuration(&config.SessionDuration, "SESSION_DURATION"); err != nil {
		return err
	}
	if err := setDuration(&config.RememberDuration, "REMEMBER_DURATION"); err != nil {
		return err
	}

	if err := setBool(&config.CookieSecure, "COOKIE_SECURE"); err != nil {
		return err
	}
	if err := setBool(&config.Dev, "DEV"); err != nil {
		return err
	}

	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
