package config

import (
	"flag"
	"io"
	"os"
)

// newFlagSet binds the supported flags to config. Flag defaults are the
// current config values, so only flags present on the command line change it.
//
// Supported flags:
//
//	-c string              YAML config file (also CONFIG_FILE)
//	-a string              HTTP bind address (e.g. ":8080")
//	-db-driver string      sqlite or postgres
//	-db-path string        SQLite database file
//	-database-url string   PostgreSQL DSN
//	-secret-key string     session signing secret
//	-session duration      login lifetime without "remember me"
//	-remember duration     login lifetime with "remember me"
//	-cookie-secure         mark the session cookie Secure
//	-log-level string      debug, info, warn, error
//	-log-format string     text or json
//	-dev                   allow the built-in development secret
func newFlagSet(config *Config, configFile *string) *flag.FlagSet {
	fs := flag.NewFlagSet("runlog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(configFile, "c", *configFile, "YAML config file")
	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DBDriver, "db-driver", config.DBDriver, "database driver (sqlite, postgres)")
	fs.StringVar(&config.DBPath, "db-path", config.DBPath, "SQLite database path")
	fs.StringVar(&config.DatabaseURL, "database-url", config.DatabaseURL, "PostgreSQL DSN")
	fs.StringVar(&config.SecretKey, "secret-key", config.SecretKey, "session signing secret")
	fs.DurationVar(&config.SessionDuration, "session", config.SessionDuration, "session lifetime")
	fs.DurationVar(&config.RememberDuration, "remember", config.RememberDuration, "remember-me lifetime")
	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "secure session cookie")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format (text, json)")
	fs.BoolVar(&config.Dev, "dev", config.Dev, "development mode")

	return fs
}

// configFilePath finds the YAML file before anything else is applied.
// The flag wins over CONFIG_FILE.
func configFilePath(args []string) (string, error) {
	path := os.Getenv("CONFIG_FILE")
	scratch := &Config{}
	if err := newFlagSet(scratch, &path).Parse(args); err != nil {
		return "", err
	}
	return path, nil
}

// parseFlags applies command-line flags on top of everything else.
func parseFlags(config *Config, args []string) error {
	var ignored string
	return newFlagSet(config, &ignored).Parse(args)
}
