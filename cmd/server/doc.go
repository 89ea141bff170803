// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package main is the entry point for the Shelfwise API server.

Shelfwise serves a book catalog with authors, libraries staffed by
librarians, per-user book ownership, role dashboards and a small blog, over
a JSON REST API under /api/v1.

# Application Architecture

	RootSupervisor ("shelfwise")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── badger-gc      (TOKEN_BACKEND=badger)
	│   └── policy-reload  (CASBIN_AUTO_RELOAD=true with CASBIN_POLICY_PATH)
	└── APISupervisor ("api-layer")
	    └── http-server

Startup order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB by default, SQLite or PostgreSQL by DB_DRIVER; schema
    migrations run on open
 4. Bootstrap: optional superuser from ADMIN_USERNAME/ADMIN_PASSWORD, and
    demo data when SEED_DEMO_DATA=true
 5. Tokens: API token store in the database or in badger
 6. Authorization: Casbin enforcer over the embedded (or configured) policy
 7. Authentication chain: Token, Bearer JWT and optionally HTTP Basic
 8. HTTP server: chi router, run under the supervisor tree

# Authentication

Clients exchange a username and password for an opaque token at
POST /api/v1/auth/token and send "Authorization: Token <key>". A JWT for
"Authorization: Bearer <jwt>" is issued by POST /api/v1/auth/login. Requests
without credentials are anonymous and may read public resources.

# Shutdown

SIGINT or SIGTERM cancels the root context. The HTTP server drains open
requests for SERVER_SHUTDOWN_TIMEOUT, the badger store and database are
closed, and services that failed to stop in time are logged.

# API Documentation

Swagger UI is served at /swagger/index.html when SWAGGER_ENABLED=true.
*/
package main
