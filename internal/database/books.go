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

const bookSelect = `SELECT b.id, b.title, b.publication_year, b.author_id, a.name, b.owner_id, b.created_at
	FROM books b JOIN authors a ON a.id = b.author_id`

func scanBookRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Book, error) {
	b := &models.Book{}
	var owner sql.NullInt64
	if err := scanner.Scan(&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID, &b.AuthorName, &owner, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Owner = idPtr(owner)
	return b, nil
}

// CreateBook inserts b after checking that its author exists. b.ID,
// b.AuthorName and b.CreatedAt are filled in.
func (db *DB) CreateBook(ctx context.Context, b *models.Book) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.idMu.Lock()
	defer db.idMu.Unlock()

	r := db.run()
	var authorName string
	err := r.queryRow(ctx, `SELECT name FROM authors WHERE id = ?`, b.AuthorID).Scan(&authorName)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidReference
	}
	if err != nil {
		return fmt.Errorf("failed to look up author %d: %w", b.AuthorID, err)
	}

	id, err := allocateID(ctx, r, "books")
	if err != nil {
		return err
	}
	createdAt := db.now()
	_, err = r.exec(ctx,
		`INSERT INTO books (id, title, publication_year, author_id, owner_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, b.Title, b.PublicationYear, b.AuthorID, nullableID(b.Owner), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	b.ID = id
	b.AuthorName = authorName
	b.CreatedAt = createdAt
	return nil
}

// GetBook returns the book with its author name, or ErrNotFound.
func (db *DB) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	b, err := scanBookRow(db.run().queryRow(ctx, bookSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return b, nil
}

// ListBooks returns books matching f. The default order is by title.
func (db *DB) ListBooks(ctx context.Context, f models.BookFilter) ([]models.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	w := bookWhere(f)
	query := bookSelect + w.sql() + orderBy(f.Ordering, bookOrderColumns, "b.title", "b.id")

	rows, err := db.run().query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0)
	for rows.Next() {
		b, err := scanBookRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// UpdateBook writes title, year and author. The owner never changes.
func (db *DB) UpdateBook(ctx context.Context, b *models.Book) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r := db.run()
	var authorName string
	err := r.queryRow(ctx, `SELECT name FROM authors WHERE id = ?`, b.AuthorID).Scan(&authorName)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidReference
	}
	if err != nil {
		return fmt.Errorf("failed to look up author %d: %w", b.AuthorID, err)
	}

	err = r.execAffecting(ctx,
		`UPDATE books SET title = ?, publication_year = ?, author_id = ? WHERE id = ?`,
		b.Title, b.PublicationYear, b.AuthorID, b.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update book %d: %w", b.ID, err)
	}
	b.AuthorName = authorName
	return nil
}

// DeleteBook removes the book and takes it off every library shelf.
func (db *DB) DeleteBook(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(r runner) error {
		if _, err := r.exec(ctx, `DELETE FROM library_books WHERE book_id = ?`, id); err != nil {
			return fmt.Errorf("failed to unshelve book %d: %w", id, err)
		}
		if err := r.execAffecting(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete book %d: %w", id, err)
		}
		return nil
	})
}
