// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/shelfwise/internal/config"
)

// Dialect captures the small differences between DuckDB, SQLite and
// PostgreSQL that the store has to care about. Queries are written once with
// ? placeholders and rebound here.
type Dialect struct {
	name string
}

// DialectFor returns the dialect for a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverDuckDB, config.DriverSQLite, config.DriverPostgres:
		return Dialect{name: driver}, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Name is the configured driver name.
func (d Dialect) Name() string { return d.name }

// SQLDriver is the name registered with database/sql.
func (d Dialect) SQLDriver() string {
	return d.name
}

// IsFileBacked reports whether Path is a filesystem path rather than a URL.
func (d Dialect) IsFileBacked() bool {
	return d.name != config.DriverPostgres
}

// Rebind converts ? placeholders to $1..$n for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d.name != config.DriverPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// likeEscaper escapes LIKE metacharacters so user search text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a lower-cased %term% pattern for use with
// "LOWER(col) LIKE ? ESCAPE '\'".
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// likeClause renders a case-insensitive substring match on col.
func likeClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
}
