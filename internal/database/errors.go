// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"errors"
	"io"
	"strings"
)

var (
	// ErrNotFound is returned when an identifier does not resolve. No
	// distinction is made between "never existed" and "deleted".
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique column (username, tag name,
	// token key) would collide.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidReference is returned when a foreign id (author, post,
	// library, book) does not resolve.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// isUniqueConstraintError matches the unique-violation messages of all three
// drivers: DuckDB ("Duplicate key"), SQLite ("UNIQUE constraint failed") and
// PostgreSQL ("duplicate key value violates unique constraint").
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
