// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/shelfwise/internal/models"
)

// CreateAuthor inserts a and fills a.ID.
func (db *DB) CreateAuthor(ctx context.Context, a *models.Author) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.idMu.Lock()
	defer db.idMu.Unlock()

	r := db.run()
	id, err := allocateID(ctx, r, "authors")
	if err != nil {
		return err
	}
	if _, err := r.exec(ctx, `INSERT INTO authors (id, name, created_by) VALUES (?, ?, ?)`,
		id, a.Name, nullableID(a.CreatedBy)); err != nil {
		return fmt.Errorf("failed to insert author: %w", err)
	}
	a.ID = id
	if a.Books == nil {
		a.Books = []models.Book{}
	}
	return nil
}

func (db *DB) getAuthorRow(ctx context.Context, id int64) (*models.Author, error) {
	a := &models.Author{}
	var createdBy sql.NullInt64
	err := db.run().queryRow(ctx, `SELECT id, name, created_by FROM authors WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author %d: %w", id, err)
	}
	a.CreatedBy = idPtr(createdBy)
	return a, nil
}

// GetAuthor returns the author with its books ordered by title.
func (db *DB) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	a, err := db.getAuthorRow(ctx, id)
	if err != nil {
		return nil, err
	}
	books, err := db.ListBooks(ctx, models.BookFilter{AuthorID: &id})
	if err != nil {
		return nil, err
	}
	a.Books = books
	return a, nil
}

// ListAuthors returns every author ordered by name, each with nested books.
func (db *DB) ListAuthors(ctx context.Context) ([]models.Author, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.run().query(ctx, `SELECT id, name, created_by FROM authors ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	authors := make([]models.Author, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var a models.Author
		var createdBy sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Name, &createdBy); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		a.CreatedBy = idPtr(createdBy)
		a.Books = []models.Book{}
		index[a.ID] = len(authors)
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("failed to iterate authors: %w", err)
	}
	closeQuietly(rows)

	books, err := db.ListBooks(ctx, models.BookFilter{})
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if i, ok := index[b.AuthorID]; ok {
			authors[i].Books = append(authors[i].Books, b)
		}
	}
	return authors, nil
}

// FindAuthorByName returns the author whose name matches case-insensitively,
// without nested books. The lowest id wins when names repeat.
func (db *DB) FindAuthorByName(ctx context.Context, name string) (*models.Author, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	a := &models.Author{Books: []models.Book{}}
	var createdBy sql.NullInt64
	err := db.run().queryRow(ctx,
		`SELECT id, name, created_by FROM authors WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1`, name).
		Scan(&a.ID, &a.Name, &createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find author %q: %w", name, err)
	}
	a.CreatedBy = idPtr(createdBy)
	return a, nil
}

// AuthorExists reports whether id resolves.
func (db *DB) AuthorExists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.run().exists(ctx, `SELECT 1 FROM authors WHERE id = ?`, id)
}

// UpdateAuthor renames the author.
func (db *DB) UpdateAuthor(ctx context.Context, a *models.Author) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.run().execAffecting(ctx, `UPDATE authors SET name = ? WHERE id = ?`, a.Name, a.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to update author %d: %w", a.ID, err)
	}
	return err
}

// DeleteAuthor removes the author and cascades to its books and their
// library shelf entries. It returns the number of books removed.
func (db *DB) DeleteAuthor(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var removed int64
	err := db.withTx(ctx, func(r runner) error {
		if _, err := r.exec(ctx,
			`DELETE FROM library_books WHERE book_id IN (SELECT id FROM books WHERE author_id = ?)`, id); err != nil {
			return fmt.Errorf("failed to unshelve books of author %d: %w", id, err)
		}
		res, err := r.exec(ctx, `DELETE FROM books WHERE author_id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete books of author %d: %w", id, err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to count deleted books: %w", err)
		}
		if err := r.execAffecting(ctx, `DELETE FROM authors WHERE id = ?`, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete author %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
