// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"strings"
)

// Supported database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Supported token store backends.
const (
	TokenBackendDatabase = "database"
	TokenBackendBadger   = "badger"
)

// minJWTSecretLength is the minimum JWT secret length in bytes.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateTokens(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateBootstrap(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be one of %s, %s, %s, got %q",
			DriverDuckDB, DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Database.Driver == DriverPostgres && !strings.HasPrefix(c.Database.Path, "postgres") {
		return fmt.Errorf("DATABASE_URL must be a postgres:// URL when DB_DRIVER=pgx")
	}
	return nil
}

func (c *Config) validateTokens() error {
	switch c.Tokens.Backend {
	case TokenBackendDatabase:
		return nil
	case TokenBackendBadger:
		if c.Tokens.BadgerPath == "" {
			return fmt.Errorf("TOKEN_BADGER_PATH is required when TOKEN_BACKEND=badger")
		}
		if c.Tokens.GCInterval <= 0 {
			return fmt.Errorf("TOKEN_GC_INTERVAL must be positive")
		}
		return nil
	default:
		return fmt.Errorf("TOKEN_BACKEND must be %s or %s, got %q",
			TokenBackendDatabase, TokenBackendBadger, c.Tokens.Backend)
	}
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BcryptCost)
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateCORS rejects wildcard origins in production since the API accepts
// credentials on every write endpoint.
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production; list the allowed origins explicitly")
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard CORS origin outside production,
// where Validate does not reject it.
func (c *Config) ShouldWarnAboutCORS() bool {
	return !c.IsProduction() && c.hasWildcardCORS()
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateRateLimits() error {
	if c.Security.DisableRateLimits {
		return nil
	}
	if c.Security.AuthRateLimit < 1 || c.Security.AuthRateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive")
	}
	if c.Security.APIRateLimit < 1 || c.Security.APIRateWindow <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateBootstrap() error {
	b := c.Bootstrap
	if b.AdminUsername == "" && b.AdminPassword == "" {
		return nil
	}
	if b.AdminUsername == "" || b.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if len(b.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
