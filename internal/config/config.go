// Package config loads the newsdesk runtime configuration: an optional YAML
// file overlaid with environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "newsdesk/pkg/config"
)

// Repository backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	// Repository selects the storage backend: memory, sqlite or postgres.
	Repository string         `yaml:"repository"`
	DataPath   string         `yaml:"data_path"`
	Database   DatabaseConfig `yaml:"database"`
	Auth       AuthConfig     `yaml:"auth"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	SQLitePath      string        `yaml:"sqlite_path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	CircuitBreaker  bool          `yaml:"circuit_breaker"`
}

type AuthConfig struct {
	BcryptCost        int      `yaml:"bcrypt_cost"`
	MinPasswordLength int      `yaml:"min_password_length"`
	WeakPasswords     []string `yaml:"weak_passwords"`
}

// Default returns the configuration used when neither file nor environment set a value.
func Default() *Config {
	return &Config{
		Repository: BackendMemory,
		DataPath:   "data",
		Database: DatabaseConfig{
			SQLitePath:      "newsdesk.db",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 1 * time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			CircuitBreaker:  true,
		},
		Auth: AuthConfig{
			BcryptCost:        10,
			MinPasswordLength: 8,
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and validates the result.
// The path parameter is expected to come from a trusted source (command-line argument).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		// #nosec G304 -- path is provided by the operator, not user input
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Repository = pkgconfig.GetEnvString("REPOSITORY", c.Repository)
	c.DataPath = pkgconfig.GetEnvString("DATA_PATH", c.DataPath)

	db := &c.Database
	db.URL = pkgconfig.GetEnvString("DATABASE_URL", db.URL)
	db.SQLitePath = pkgconfig.GetEnvString("SQLITE_PATH", db.SQLitePath)
	db.MaxOpenConns = pkgconfig.GetEnvInt("DB_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.MaxIdleConns = pkgconfig.GetEnvInt("DB_MAX_IDLE_CONNS", db.MaxIdleConns)
	db.ConnMaxLifetime = pkgconfig.GetEnvDuration("DB_CONN_MAX_LIFETIME", db.ConnMaxLifetime)
	db.ConnMaxIdleTime = pkgconfig.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", db.ConnMaxIdleTime)
	db.CircuitBreaker = pkgconfig.GetEnvBool("DB_CIRCUIT_BREAKER", db.CircuitBreaker)

	c.Auth.BcryptCost = pkgconfig.GetEnvInt("BCRYPT_COST", c.Auth.BcryptCost)
	c.Auth.MinPasswordLength = pkgconfig.GetEnvInt("AUTH_MIN_PASSWORD_LENGTH", c.Auth.MinPasswordLength)
	c.Auth.WeakPasswords = pkgconfig.GetEnvStringList("AUTH_WEAK_PASSWORDS", c.Auth.WeakPasswords)
}

// Validate rejects unknown backends, missing connection targets and unusable pool settings.
func (c *Config) Validate() error {
	switch c.Repository {
	case BackendMemory:
	case BackendSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite repository")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database url is required for the postgres repository")
		}
	default:
		return fmt.Errorf("unknown repository %q", c.Repository)
	}

	if c.DataPath == "" {
		return fmt.Errorf("data_path is required")
	}

	if c.Repository != BackendMemory {
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("max_open_conns must be positive")
		}
		if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			return fmt.Errorf("max_idle_conns must be between 0 and max_open_conns")
		}
		if err := pkgconfig.ValidatePositiveDuration(c.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("conn_max_lifetime: %w", err)
		}
		if err := pkgconfig.ValidateNonNegativeDuration(c.Database.ConnMaxIdleTime); err != nil {
			return fmt.Errorf("conn_max_idle_time: %w", err)
		}
	}

	if err := pkgconfig.ValidateIntRange(c.Auth.BcryptCost, 4, 31); err != nil {
		return fmt.Errorf("bcrypt_cost: %w", err)
	}
	if c.Auth.MinPasswordLength < 0 {
		return fmt.Errorf("min_password_length must not be negative")
	}
	return nil
}
