// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/models"
)

// testDBSemaphore serializes DuckDB usage across parallel tests. It is held
// for the whole test, not just for New, because concurrent CGO calls from
// several in-memory databases can stall under CI load.
var testDBSemaphore = make(chan struct{}, 1)

var testDBMutex sync.Mutex

// setupTestDB opens a migrated in-memory DuckDB with a stepping clock and
// closes it when the test ends.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Driver:    config.DriverDuckDB,
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	}

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		res.db.SetClock(steppingClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("close: %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

// steppingClock returns start, start+1s, start+2s, ... so rows created in
// sequence have strictly increasing timestamps.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

// mustCreateUser inserts a user with the given role.
func mustCreateUser(t *testing.T, db *DB, username, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := db.CreateUser(context.Background(), u, role); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustCreateAuthor(t *testing.T, db *DB, name string) *models.Author {
	t.Helper()
	a := &models.Author{Name: name}
	if err := db.CreateAuthor(context.Background(), a); err != nil {
		t.Fatalf("CreateAuthor(%s): %v", name, err)
	}
	return a
}

func mustCreateBook(t *testing.T, db *DB, title string, year int, authorID int64, owner *int64) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, PublicationYear: year, AuthorID: authorID, Owner: owner}
	if err := db.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook(%s): %v", title, err)
	}
	return b
}

func TestNew_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	version, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion: %v", err)
	}
	want := migrations()[len(migrations())-1].Version
	if version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}

	history, err := db.GetMigrationHistory(ctx)
	if err != nil {
		t.Fatalf("GetMigrationHistory: %v", err)
	}
	if len(history) != len(migrations()) {
		t.Errorf("history has %d entries, want %d", len(history), len(migrations()))
	}

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	history, err := db.GetMigrationHistory(ctx)
	if err != nil {
		t.Fatalf("GetMigrationHistory: %v", err)
	}
	if len(history) != len(migrations()) {
		t.Errorf("re-running Migrate recorded %d entries, want %d", len(history), len(migrations()))
	}
}

func TestMigrations_VersionsIncrease(t *testing.T) {
	prev := 0
	for _, m := range migrations() {
		if m.Version <= prev {
			t.Errorf("migration %q has version %d after %d", m.Name, m.Version, prev)
		}
		if len(m.Statements) == 0 {
			t.Errorf("migration v%d has no statements", m.Version)
		}
		prev = m.Version
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Driver: "oracle", Path: "x"})
	if err == nil || !strings.Contains(err.Error(), "unsupported database driver") {
		t.Errorf("New with bad driver: err = %v", err)
	}
}

func TestDataSourceName(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "duckdb",
			cfg:  config.DatabaseConfig{Driver: config.DriverDuckDB, Path: "/data/shelfwise.duckdb", Threads: 4, MaxMemory: "1GB"},
			want: "/data/shelfwise.duckdb?access_mode=read_write&threads=4&max_memory=1GB",
		},
		{
			name: "duckdb default memory",
			cfg:  config.DatabaseConfig{Driver: config.DriverDuckDB, Path: ":memory:", Threads: 1},
			want: ":memory:?access_mode=read_write&threads=1&max_memory=512MB",
		},
		{
			name: "sqlite",
			cfg:  config.DatabaseConfig{Driver: config.DriverSQLite, Path: "/data/shelfwise.db"},
			want: "/data/shelfwise.db?_busy_timeout=5000",
		},
		{
			name: "sqlite with options",
			cfg:  config.DatabaseConfig{Driver: config.DriverSQLite, Path: "file:test.db?cache=shared"},
			want: "file:test.db?cache=shared&_busy_timeout=5000",
		},
		{
			name: "postgres passes through",
			cfg:  config.DatabaseConfig{Driver: config.DriverPostgres, Path: "postgres://u:p@localhost/db"},
			want: "postgres://u:p@localhost/db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DialectFor(tt.cfg.Driver)
			if err != nil {
				t.Fatalf("DialectFor: %v", err)
			}
			cfg := tt.cfg
			if got := dataSourceName(d, &cfg); got != tt.want {
				t.Errorf("dataSourceName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialect_Rebind(t *testing.T) {
	pg, _ := DialectFor(config.DriverPostgres)
	duck, _ := DialectFor(config.DriverDuckDB)

	query := `SELECT id FROM books WHERE author_id = ? AND publication_year >= ?`
	if got := duck.Rebind(query); got != query {
		t.Errorf("duckdb Rebind changed query: %q", got)
	}
	want := `SELECT id FROM books WHERE author_id = $1 AND publication_year >= $2`
	if got := pg.Rebind(query); got != want {
		t.Errorf("postgres Rebind() = %q, want %q", got, want)
	}
}

func TestStatementKind(t *testing.T) {
	tests := map[string]string{
		"SELECT 1":                          "select",
		"  insert INTO books VALUES (?)":    "insert",
		"\n\tUPDATE books SET title = ?":    "update",
		"DELETE FROM books":                 "delete",
		"CREATE TABLE IF NOT EXISTS t (id)": "create",
	}
	for query, want := range tests {
		if got := statementKind(query); got != want {
			t.Errorf("statementKind(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(0); got != "" {
		t.Errorf("placeholders(0) = %q", got)
	}
	if got := placeholders(3); got != "?, ?, ?" {
		t.Errorf("placeholders(3) = %q", got)
	}
}
