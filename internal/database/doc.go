// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package database is the relational store behind the Shelfwise API.
//
// # Overview
//
// DB wraps a *sql.DB together with a Dialect. The same portable SQL runs on
// three drivers:
//   - duckdb (default): github.com/duckdb/duckdb-go/v2
//   - sqlite3: github.com/mattn/go-sqlite3
//   - pgx: github.com/jackc/pgx/v5/stdlib
//
// Queries are written with ? placeholders; Dialect.Rebind turns them into
// $1..$n for PostgreSQL.
//
// # Files
//
//   - database.go: open, pool sizing, ping, close
//   - migrations.go: versioned schema in schema_migrations
//   - database_utils.go: runner, transactions, id allocation
//   - filter.go: WHERE/ORDER BY construction for list endpoints
//   - users.go: users, profiles, roles
//   - authors.go, books.go: the catalog
//   - libraries.go: libraries, shelves and librarians
//   - blog.go, comments.go: posts, tags, comments and the home feed
//   - tokens.go: the opaque API token table
//   - seed.go: demo data and the bootstrap admin
//
// # Identifiers
//
// Primary keys are allocated as MAX(id)+1 while holding a process-wide
// mutex. The store assumes it is the only writer to its database.
//
// # Cascades
//
// The schema carries no foreign keys because DuckDB cannot cascade deletes.
// Every delete that must take dependent rows with it (author to books, post
// to comments and tag links, library to shelf and librarian, user to
// profile, token, posts, comments and owned books) runs in one transaction. Link tables are reconciled by
// difference rather than delete-and-reinsert.
//
// # Errors
//
// Lookups that miss return ErrNotFound; unique collisions return
// ErrDuplicate; dangling foreign ids return ErrInvalidReference. Everything
// else is wrapped with context and returned.
//
// # Testing
//
// Tests run against an in-memory DuckDB (setupTestDB). The PostgreSQL path is
// covered by an integration-tagged test that starts a container with
// testcontainers-go.
package database
