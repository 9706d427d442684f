// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, JWT) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Klustra API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// JWTSecret is the shared HS512 signing key. Minimum length is enforced
	// by sec.NewTokenService at startup.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Token validity windows. The refresh window must exceed the access window.
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// AllowPlaintextPasswords enables legacy plain-text password comparison
	// for development seed data. Refused outright in production.
	AllowPlaintextPasswords bool `env:"AUTH_ALLOW_PLAINTEXT_PASSWORDS" envDefault:"false"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		return nil, errors.New("config: REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}

	// Plain-text password comparison is a development convenience only.
	if cfg.AllowPlaintextPasswords && cfg.IsProduction() {
		return nil, errors.New("config: AUTH_ALLOW_PLAINTEXT_PASSWORDS cannot be enabled in production")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
