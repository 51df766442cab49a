// Package config provides environment-variable helpers shared by the
// configuration loaders. Malformed values fall back to the given default and
// log a warning; they never fail the caller.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultValue when it is unset or empty.
//
// Example:
//
//	dsn := GetEnvString("DATABASE_URL", "")
func GetEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns key parsed as a base-10 integer.
//
// Example:
//
//	maxOpen := GetEnvInt("DB_MAX_OPEN_CONNS", 25)
func GetEnvInt(key string, defaultValue int) int {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Int("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}

// GetEnvBool returns key parsed with strconv.ParseBool.
//
// Example:
//
//	breaker := GetEnvBool("DB_CIRCUIT_BREAKER", true)
func GetEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid boolean value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Bool("default", defaultValue))
		return defaultValue
	}
	return value
}

// GetEnvDuration returns key parsed with time.ParseDuration ("30s", "1h30m").
//
// Example:
//
//	lifetime := GetEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.String("default", defaultValue.String()),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}

// GetEnvStringList returns key split on commas. Items are trimmed and
// empty items dropped; an all-empty list yields defaultValue.
//
// Example:
//
//	// AUTH_WEAK_PASSWORDS="password, 123456, qwerty"
//	weak := GetEnvStringList("AUTH_WEAK_PASSWORDS", nil)
func GetEnvStringList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
