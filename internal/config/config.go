// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package config loads service configuration from defaults, an optional YAML
// file, environment variables, and command-line flags, in that order of
// precedence (later sources win).
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix for environment variable overrides.
// TASKVAULT_HTTP_ADDR maps to the http.addr key, and so on.
const EnvPrefix = "TASKVAULT_"

// Config holds the full service configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	JWT      JWTConfig      `koanf:"jwt"`
	Log      LogConfig      `koanf:"log"`
	Argon2   Argon2Config   `koanf:"argon2"`
}

// HTTPConfig configures the public API server.
type HTTPConfig struct {
	Addr        string   `koanf:"addr"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// MetricsConfig configures the observability server.
type MetricsConfig struct {
	// Addr is the metrics/health listen address. Empty disables the server.
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// JWTConfig configures access token issuance.
type JWTConfig struct {
	// Secret is the HMAC signing key. Required; there is no safe default.
	Secret    string        `koanf:"secret"`
	Algorithm string        `koanf:"algorithm"`
	TTL       time.Duration `koanf:"ttl"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Argon2Config tunes password hashing cost parameters.
type Argon2Config struct {
	Time    uint32 `koanf:"time"`
	MemoryK uint32 `koanf:"memory_kib"`
	Threads uint8  `koanf:"threads"`
}

// Default values applied before any other source.
func defaults() map[string]any {
	return map[string]any{
		"http.addr":         ":8080",
		"http.cors_origins": []string{"*"},
		"metrics.addr":      "127.0.0.1:9100",
		"jwt.algorithm":     "HS256",
		"jwt.ttl":           "60m",
		"log.format":        "json",
		"log.level":         "info",
		"argon2.time":       1,
		"argon2.memory_kib": 64 * 1024,
		"argon2.threads":    4,
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty; a missing explicit file is an error), TASKVAULT_* environment
// variables, and the given flag set (nil to skip flags).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, oops.Code("CONFIG_INVALID").
					With("path", path).
					Errorf("config file not found: %s", path)
			}
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		// TASKVAULT_HTTP_ADDR -> http.addr
		key := strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(key), "_", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("source", "env").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return &cfg, nil
}

// ValidateDatabase checks that a database URL is configured. Commands that
// only touch the database (migrations) need nothing else.
func (c *Config) ValidateDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "database.url").
			Errorf("database URL is required")
	}
	return nil
}

// Validate checks every field the API server requires.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.JWT.Secret == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "jwt.secret").
			Errorf("JWT secret is required")
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return oops.Code("CONFIG_INVALID").
			With("field", "jwt.algorithm").
			Errorf("unsupported JWT algorithm %q", c.JWT.Algorithm)
	}
	if c.JWT.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("field", "jwt.ttl").
			Errorf("JWT TTL must be positive, got %s", c.JWT.TTL)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("field", "log.format").
			Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	return nil
}
