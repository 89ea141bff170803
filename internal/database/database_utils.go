// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// ensureContext creates a context with 30-second timeout if none provided
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}

	return ctx, func() {}
}

// schemaContext bounds migration work at startup.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// runner executes dialect-rebound statements and records their latency.
type runner struct {
	q       querier
	dialect Dialect
}

func (db *DB) run() runner {
	return runner{q: db.conn, dialect: db.dialect}
}

func (r runner) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := r.q.ExecContext(ctx, r.dialect.Rebind(query), args...)
	metrics.RecordDBQuery(r.dialect.Name(), statementKind(query), time.Since(start), err)
	return res, err
}

func (r runner) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.q.QueryContext(ctx, r.dialect.Rebind(query), args...)
	metrics.RecordDBQuery(r.dialect.Name(), statementKind(query), time.Since(start), err)
	return rows, err
}

// queryRow defers error reporting to Scan, so only latency is recorded.
func (r runner) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := r.q.QueryRowContext(ctx, r.dialect.Rebind(query), args...)
	metrics.RecordDBQuery(r.dialect.Name(), statementKind(query), time.Since(start), nil)
	return row
}

// execAffecting runs a write and returns ErrNotFound when no row matched.
func (r runner) execAffecting(ctx context.Context, query string, args ...any) error {
	res, err := r.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// exists reports whether the query returns at least one row.
func (r runner) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.queryRow(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// statementKind is the lower-cased leading SQL keyword, used as a metric label.
func statementKind(query string) string {
	q := strings.TrimSpace(query)
	if i := strings.IndexAny(q, " \n\t("); i > 0 {
		q = q[:i]
	}
	return strings.ToLower(q)
}

// withTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (db *DB) withTx(ctx context.Context, fn func(r runner) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(runner{q: tx, dialect: db.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			logging.Warn().Err(rbErr).Msg("Transaction rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// allocateID returns MAX(id)+1 for table. Callers hold db.idMu for the
// duration of the insert so two writers cannot claim the same id.
func allocateID(ctx context.Context, r runner, table string) (int64, error) {
	var id int64
	if err := r.queryRow(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM "+table).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", table, err)
	}
	return id, nil
}

// nullableID converts an optional id to a driver value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// idPtr converts a scanned nullable id back to a pointer.
func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args widens ids for use as variadic query arguments.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
