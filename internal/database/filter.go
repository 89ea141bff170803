// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"strings"
	"unicode"

	"github.com/tomtom215/shelfwise/internal/models"
)

// whereBuilder accumulates AND-ed conditions and their arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// anyOf adds "(c1 OR c2 ...)" binding the same argument to every column.
func (w *whereBuilder) anyOf(conds []string, arg any) {
	if len(conds) == 0 {
		return
	}
	w.conds = append(w.conds, "("+strings.Join(conds, " OR ")+")")
	for range conds {
		w.args = append(w.args, arg)
	}
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// searchTerms splits a search string on whitespace and commas. Every term
// must match at least one searched column.
func searchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// addSearch adds one OR-group per term over the given columns.
func (w *whereBuilder) addSearch(search string, columns ...string) {
	for _, term := range searchTerms(search) {
		conds := make([]string, len(columns))
		for i, col := range columns {
			conds[i] = likeClause(col)
		}
		w.anyOf(conds, containsPattern(term))
	}
}

// bookOrderColumns maps public ordering names to SQL columns.
var bookOrderColumns = map[string]string{
	"title":            "b.title",
	"author__name":     "a.name",
	"author":           "b.author_id",
	"publication_year": "b.publication_year",
	"id":               "b.id",
}

// orderBy renders an ORDER BY clause from a comma-separated ordering
// parameter such as "-publication_year,title". Unknown fields are ignored
// and the default applies when nothing valid remains. The primary key is
// always the final tie-break so pages are stable.
func orderBy(ordering string, columns map[string]string, fallback, tieBreak string) string {
	var parts []string
	for _, field := range strings.Split(ordering, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		col, ok := columns[strings.TrimPrefix(field, "-")]
		if !ok {
			continue
		}
		if desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	if len(parts) == 0 {
		parts = append(parts, fallback)
	}
	parts = append(parts, tieBreak)
	return " ORDER BY " + strings.Join(parts, ", ")
}

// bookWhere translates a BookFilter into SQL conditions over books b JOIN authors a.
func bookWhere(f models.BookFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.AuthorID != nil {
		w.add("b.author_id = ?", *f.AuthorID)
	}
	if f.Title != "" {
		w.add("b.title = ?", f.Title)
	}
	if f.PublicationYear != nil {
		w.add("b.publication_year = ?", *f.PublicationYear)
	}
	if f.MinYear != nil {
		w.add("b.publication_year >= ?", *f.MinYear)
	}
	if f.MaxYear != nil {
		w.add("b.publication_year <= ?", *f.MaxYear)
	}
	if f.OwnerID != nil {
		w.add("b.owner_id = ?", *f.OwnerID)
	}
	if f.LibraryID != nil {
		w.add("EXISTS (SELECT 1 FROM library_books lb WHERE lb.book_id = b.id AND lb.library_id = ?)", *f.LibraryID)
	}
	if f.Search != "" {
		w.addSearch(f.Search, "b.title", "a.name")
	}
	return w
}
