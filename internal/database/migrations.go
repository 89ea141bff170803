// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// Migration represents a versioned schema change.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // Description of what this migration does
	Statements  []string  // Executed in order inside one transaction
	AppliedAt   time.Time // Populated when read back from schema_migrations
}

// schemaMigrationsTable creates the migration tracking table. applied_at is
// written by the application so no dialect-specific default is needed.
const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name VARCHAR NOT NULL,
	description VARCHAR,
	applied_at TIMESTAMP NOT NULL
)`

// migrations returns all versioned migrations in order. Migrations are
// append-only: never edit or remove one that has shipped.
//
// The schema avoids FOREIGN KEY clauses. DuckDB does not implement ON DELETE
// CASCADE, so cascades are done explicitly in transactions by the store.
func migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "users_profiles_tokens",
			Description: "Principals, their 1:1 role profiles and API tokens",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS users (
					id BIGINT PRIMARY KEY,
					username VARCHAR NOT NULL UNIQUE,
					email VARCHAR NOT NULL DEFAULT '',
					password_hash VARCHAR NOT NULL,
					first_name VARCHAR NOT NULL DEFAULT '',
					last_name VARCHAR NOT NULL DEFAULT '',
					is_staff BOOLEAN NOT NULL DEFAULT FALSE,
					is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					date_joined TIMESTAMP NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS profiles (
					user_id BIGINT PRIMARY KEY,
					role VARCHAR NOT NULL DEFAULT 'Member',
					bio VARCHAR NOT NULL DEFAULT '',
					location VARCHAR NOT NULL DEFAULT '',
					birth_date DATE
				)`,
				`CREATE TABLE IF NOT EXISTS tokens (
					user_id BIGINT PRIMARY KEY,
					token_key VARCHAR NOT NULL UNIQUE,
					created TIMESTAMP NOT NULL
				)`,
			},
		},
		{
			Version:     2,
			Name:        "catalog",
			Description: "Authors and their books",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS authors (
					id BIGINT PRIMARY KEY,
					name VARCHAR NOT NULL,
					created_by BIGINT
				)`,
				`CREATE TABLE IF NOT EXISTS books (
					id BIGINT PRIMARY KEY,
					title VARCHAR NOT NULL,
					publication_year INTEGER NOT NULL,
					author_id BIGINT NOT NULL,
					owner_id BIGINT,
					created_at TIMESTAMP NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_books_author ON books (author_id)`,
				`CREATE INDEX IF NOT EXISTS idx_books_owner ON books (owner_id)`,
			},
		},
		{
			Version:     3,
			Name:        "libraries",
			Description: "Libraries, their book shelves and one librarian each",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS libraries (
					id BIGINT PRIMARY KEY,
					name VARCHAR NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS library_books (
					library_id BIGINT NOT NULL,
					book_id BIGINT NOT NULL,
					PRIMARY KEY (library_id, book_id)
				)`,
				`CREATE TABLE IF NOT EXISTS librarians (
					id BIGINT PRIMARY KEY,
					name VARCHAR NOT NULL,
					library_id BIGINT NOT NULL UNIQUE
				)`,
			},
		},
		{
			Version:     4,
			Name:        "blog",
			Description: "Posts, comments and tags",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS posts (
					id BIGINT PRIMARY KEY,
					title VARCHAR NOT NULL,
					content TEXT NOT NULL,
					published_date TIMESTAMP NOT NULL,
					author_id BIGINT NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS comments (
					id BIGINT PRIMARY KEY,
					post_id BIGINT NOT NULL,
					author_id BIGINT NOT NULL,
					content TEXT NOT NULL,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS tags (
					id BIGINT PRIMARY KEY,
					name VARCHAR NOT NULL UNIQUE
				)`,
				`CREATE TABLE IF NOT EXISTS post_tags (
					post_id BIGINT NOT NULL,
					tag_id BIGINT NOT NULL,
					PRIMARY KEY (post_id, tag_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id)`,
			},
		},
	}
}

// Migrate applies every migration that has not been recorded yet.
func (db *DB) Migrate(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r := db.run()
	if _, err := r.exec(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	newMigrations := 0
	for _, m := range migrations() {
		if applied[m.Version] {
			continue
		}
		err := db.withTx(ctx, func(r runner) error {
			for _, stmt := range m.Statements {
				if _, err := r.exec(ctx, stmt); err != nil {
					return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
				}
			}
			_, err := r.exec(ctx,
				`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`,
				m.Version, m.Name, m.Description, db.now())
			if err != nil {
				return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		newMigrations++
	}

	if newMigrations > 0 {
		dbLog := logging.WithComponent("database")
		dbLog.Info().
			Int("count", newMigrations).
			Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.run().query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// GetCurrentSchemaVersion returns the highest applied migration version
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	err := db.run().queryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// GetMigrationHistory returns all applied migrations in order
func (db *DB) GetMigrationHistory(ctx context.Context) ([]Migration, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.run().query(ctx,
		`SELECT version, name, COALESCE(description, ''), applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	defer rows.Close()

	var history []Migration
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
