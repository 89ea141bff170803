// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shelfwise/config.yaml",
	"/etc/shelfwise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
			SwaggerEnabled:  true,
		},
		Database: DatabaseConfig{
			Driver:       "duckdb",
			Path:         "/data/shelfwise.duckdb",
			MaxMemory:    "512MB",
			Threads:      0,
			MaxOpenConns: 0,
		},
		Tokens: TokenConfig{
			Backend:    "database",
			BadgerPath: "/data/tokens",
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			JWTTTL:           24 * time.Hour,
			BasicAuthEnabled: true,
			BcryptCost:       12,
			CORSOrigins:      []string{"*"},
			AuthRateLimit:    10,
			AuthRateWindow:   time.Minute,
			APIRateLimit:     300,
			APIRateWindow:    time.Minute,
			Casbin: CasbinConfig{
				AutoReload:     false,
				ReloadInterval: 30 * time.Second,
				CacheEnabled:   true,
				CacheTTL:       5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
//
// Order (later layers win):
//  1. Struct defaults
//  2. Config file (CONFIG_PATH or the first of DefaultConfigPaths)
//  3. Environment variables listed in envTransformFunc
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the YAML layer may already hold a list.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so the process environment cannot leak into config.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"swagger_enabled":       "server.swagger_enabled",

	// Database
	"db_driver":         "database.driver",
	"db_path":           "database.path",
	"database_url":      "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"db_max_open_conns": "database.max_open_conns",
	"seed_demo_data":    "database.seed_demo_data",

	// Token store
	"token_backend":     "tokens.backend",
	"token_badger_path": "tokens.badger_path",
	"token_gc_interval": "tokens.gc_interval",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_ttl":             "security.jwt_ttl",
	"basic_auth_enabled":  "security.basic_auth_enabled",
	"bcrypt_cost":         "security.bcrypt_cost",
	"cors_origins":        "security.cors_origins",
	"auth_rate_limit":     "security.auth_rate_limit",
	"auth_rate_window":    "security.auth_rate_window",
	"api_rate_limit":      "security.api_rate_limit",
	"api_rate_window":     "security.api_rate_window",
	"disable_rate_limits": "security.disable_rate_limits",

	// Casbin
	"casbin_model_path":      "security.casbin.model_path",
	"casbin_policy_path":     "security.casbin.policy_path",
	"casbin_auto_reload":     "security.casbin.auto_reload",
	"casbin_reload_interval": "security.casbin.reload_interval",
	"casbin_cache_enabled":   "security.casbin.cache_enabled",
	"casbin_cache_ttl":       "security.casbin.cache_ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Bootstrap
	"admin_username": "bootstrap.admin_username",
	"admin_password": "bootstrap.admin_password",
	"admin_email":    "bootstrap.admin_email",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DB_DRIVER -> database.driver
//   - CASBIN_POLICY_PATH -> security.casbin.policy_path
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
