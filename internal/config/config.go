// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Tokens    TokenConfig     `koanf:"tokens"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
	SwaggerEnabled  bool          `koanf:"swagger_enabled"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	// Driver is one of duckdb, sqlite3 or pgx.
	Driver string `koanf:"driver"`

	// Path is the database file for duckdb/sqlite3 (":memory:" is allowed)
	// or the connection URL for pgx.
	Path string `koanf:"path"`

	MaxMemory    string `koanf:"max_memory"` // DuckDB only
	Threads      int    `koanf:"threads"`    // DuckDB only, 0 = NumCPU
	MaxOpenConns int    `koanf:"max_open_conns"`
	SeedDemoData bool   `koanf:"seed_demo_data"`
}

// TokenConfig selects where opaque API tokens are stored.
type TokenConfig struct {
	// Backend is "database" (tokens table) or "badger".
	Backend string `koanf:"backend"`

	// BadgerPath is the badger directory when Backend is "badger".
	BadgerPath string `koanf:"badger_path"`

	// GCInterval is how often badger value-log GC runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTTTL            time.Duration `koanf:"jwt_ttl"`
	BasicAuthEnabled  bool          `koanf:"basic_auth_enabled"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	AuthRateLimit     int           `koanf:"auth_rate_limit"`
	AuthRateWindow    time.Duration `koanf:"auth_rate_window"`
	APIRateLimit      int           `koanf:"api_rate_limit"`
	APIRateWindow     time.Duration `koanf:"api_rate_window"`
	DisableRateLimits bool          `koanf:"disable_rate_limits"`
	Casbin            CasbinConfig  `koanf:"casbin"`
}

// CasbinConfig configures the access rule table.
type CasbinConfig struct {
	// ModelPath and PolicyPath override the embedded model and policy.
	ModelPath      string        `koanf:"model_path"`
	PolicyPath     string        `koanf:"policy_path"`
	AutoReload     bool          `koanf:"auto_reload"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	CacheEnabled   bool          `koanf:"cache_enabled"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// BootstrapConfig creates the first superuser on startup when set.
type BootstrapConfig struct {
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
	AdminEmail    string `koanf:"admin_email"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
