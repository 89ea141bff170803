// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
)

// DB wraps the SQL connection pool and provides data access methods for every
// Shelfwise entity.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	dialect Dialect

	// idMu serializes MAX(id)+1 allocation across all tables.
	idMu sync.Mutex

	// now is replaced in tests for deterministic timestamps.
	now func() time.Time
}

// New opens the configured database, applies pending migrations and returns
// a ready DB.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if dialect.IsFileBacked() && cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open(dialect.SQLDriver(), dataSourceName(dialect, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		dialect: dialect,
		now:     defaultNow,
	}

	db.configureConnectionPool()

	ctx, cancel := schemaContext()
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to reach %s database: %w", cfg.Driver, err)
	}

	if err := db.Migrate(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	dbLog := logging.WithComponent("database")
	dbLog.Info().
		Str("driver", cfg.Driver).
		Msg("Database ready")

	return db, nil
}

// dataSourceName builds the driver-specific connection string.
func dataSourceName(d Dialect, cfg *config.DatabaseConfig) string {
	switch d.Name() {
	case config.DriverDuckDB:
		threads := cfg.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		maxMemory := cfg.MaxMemory
		if maxMemory == "" {
			maxMemory = "512MB"
		}
		return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s", cfg.Path, threads, maxMemory)
	case config.DriverSQLite:
		sep := "?"
		if strings.Contains(cfg.Path, "?") {
			sep = "&"
		}
		return cfg.Path + sep + "_busy_timeout=5000"
	default:
		return cfg.Path
	}
}

// configureConnectionPool sizes the pool for the driver. SQLite is pinned to
// one connection: in-memory databases are per-connection and the file lock
// admits a single writer.
func (db *DB) configureConnectionPool() {
	switch db.dialect.Name() {
	case config.DriverSQLite:
		db.conn.SetMaxOpenConns(1)
	default:
		maxOpen := db.cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = runtime.NumCPU() * 2
		}
		db.conn.SetMaxOpenConns(maxOpen)
		db.conn.SetMaxIdleConns(2)
	}
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Conn returns the underlying pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect returns the SQL dialect in use.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// SetClock replaces the timestamp source. Intended for tests.
func (db *DB) SetClock(now func() time.Time) {
	db.now = func() time.Time { return now().UTC().Truncate(time.Microsecond) }
}
