// Package config reads service settings from STOCKROOM_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "stockroom"

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds settings shared by every command. CLI flags override the
// values read here.
type Config struct {
	DBDriver        string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN           string        `envconfig:"DB_DSN" default:"stockroom.db"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:"127.0.0.1:5000"`
	ConnectAttempts int           `envconfig:"CONNECT_ATTEMPTS" default:"5"`
	ConnectInterval time.Duration `envconfig:"CONNECT_INTERVAL" default:"5s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks field ranges and the driver name.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown db driver %q: must be %s or %s", c.DBDriver, DriverSQLite, DriverPostgres)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("config: db dsn is required")
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("config: connect attempts must be >= 1, got %d", c.ConnectAttempts)
	}
	if c.ConnectInterval < 0 {
		return fmt.Errorf("config: connect interval must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown timeout must be positive")
	}
	return nil
}
