// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package config provides centralized configuration management for Shelfwise.

Configuration is loaded with Koanf v2 from three layers, later layers winning:

  - Struct defaults (defaultConfig)
  - An optional YAML file (CONFIG_PATH, config.yaml, /etc/shelfwise/config.yaml)
  - Environment variables from an explicit mapping table

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8000)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging, production

Database:
  - DB_DRIVER: duckdb (default), sqlite3, pgx
  - DB_PATH / DATABASE_URL: file path or postgres:// URL
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DB_MAX_OPEN_CONNS
  - SEED_DEMO_DATA: load the demo catalog on startup

API tokens:
  - TOKEN_BACKEND: database (default) or badger
  - TOKEN_BADGER_PATH, TOKEN_GC_INTERVAL

Security:
  - JWT_SECRET (required, 32+ characters), JWT_TTL
  - BASIC_AUTH_ENABLED, BCRYPT_COST
  - CORS_ORIGINS: comma-separated list
  - AUTH_RATE_LIMIT, AUTH_RATE_WINDOW, API_RATE_LIMIT, API_RATE_WINDOW, DISABLE_RATE_LIMITS
  - CASBIN_MODEL_PATH, CASBIN_POLICY_PATH, CASBIN_AUTO_RELOAD, CASBIN_RELOAD_INTERVAL,
    CASBIN_CACHE_ENABLED, CASBIN_CACHE_TTL

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Bootstrap:
  - ADMIN_USERNAME, ADMIN_PASSWORD, ADMIN_EMAIL: create a superuser on first start

# Example config.yaml

	server:
	  port: 8000
	database:
	  driver: sqlite3
	  path: ./shelfwise.db
	security:
	  jwt_secret: "change-me-to-a-32-character-secret!!"
	  cors_origins: ["https://books.example.com"]
*/
package config
