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

// CreateLibrary inserts a library shelving bookIDs. Every book must exist.
func (db *DB) CreateLibrary(ctx context.Context, l *models.Library, bookIDs []int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	bookIDs = uniqueIDs(bookIDs)

	db.idMu.Lock()
	defer db.idMu.Unlock()

	return db.withTx(ctx, func(r runner) error {
		if err := checkBooksExist(ctx, r, bookIDs); err != nil {
			return err
		}
		id, err := allocateID(ctx, r, "libraries")
		if err != nil {
			return err
		}
		if _, err := r.exec(ctx, `INSERT INTO libraries (id, name) VALUES (?, ?)`, id, l.Name); err != nil {
			return fmt.Errorf("failed to insert library: %w", err)
		}
		for _, bookID := range bookIDs {
			if _, err := r.exec(ctx, `INSERT INTO library_books (library_id, book_id) VALUES (?, ?)`, id, bookID); err != nil {
				return fmt.Errorf("failed to shelve book %d: %w", bookID, err)
			}
		}
		l.ID = id
		return nil
	})
}

// GetLibrary returns the library with its books (by title) and librarian.
func (db *DB) GetLibrary(ctx context.Context, id int64) (*models.Library, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	l := &models.Library{}
	err := db.run().queryRow(ctx, `SELECT id, name FROM libraries WHERE id = ?`, id).Scan(&l.ID, &l.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get library %d: %w", id, err)
	}
	if err := db.fillLibrary(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (db *DB) fillLibrary(ctx context.Context, l *models.Library) error {
	books, err := db.ListBooks(ctx, models.BookFilter{LibraryID: &l.ID})
	if err != nil {
		return err
	}
	l.Books = books

	librarian, err := db.GetLibrarianForLibrary(ctx, l.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		l.Librarian = nil
	case err != nil:
		return err
	default:
		l.Librarian = librarian
	}
	return nil
}

// ListLibraries returns every library ordered by name.
func (db *DB) ListLibraries(ctx context.Context) ([]models.Library, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.run().query(ctx, `SELECT id, name FROM libraries ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list libraries: %w", err)
	}
	libraries := make([]models.Library, 0)
	for rows.Next() {
		var l models.Library
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan library: %w", err)
		}
		libraries = append(libraries, l)
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("failed to iterate libraries: %w", err)
	}
	closeQuietly(rows)

	for i := range libraries {
		if err := db.fillLibrary(ctx, &libraries[i]); err != nil {
			return nil, err
		}
	}
	return libraries, nil
}

// UpdateLibrary renames the library and, when bookIDs is non-nil, replaces
// its shelf with exactly those books.
func (db *DB) UpdateLibrary(ctx context.Context, id int64, name string, bookIDs []int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(r runner) error {
		if err := r.execAffecting(ctx, `UPDATE libraries SET name = ? WHERE id = ?`, name, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to update library %d: %w", id, err)
		}
		if bookIDs == nil {
			return nil
		}
		want := uniqueIDs(bookIDs)
		if err := checkBooksExist(ctx, r, want); err != nil {
			return err
		}
		return syncLibraryShelf(ctx, r, id, want)
	})
}

// syncLibraryShelf applies the difference between the current shelf and
// want. Rows that stay are left untouched.
func syncLibraryShelf(ctx context.Context, r runner, libraryID int64, want []int64) error {
	rows, err := r.query(ctx, `SELECT book_id FROM library_books WHERE library_id = ?`, libraryID)
	if err != nil {
		return fmt.Errorf("failed to read shelf: %w", err)
	}
	have := make(map[int64]bool)
	for rows.Next() {
		var bookID int64
		if err := rows.Scan(&bookID); err != nil {
			closeQuietly(rows)
			return fmt.Errorf("failed to scan shelf: %w", err)
		}
		have[bookID] = true
	}
	if err := rows.Err(); err != nil {
		closeQuietly(rows)
		return fmt.Errorf("failed to iterate shelf: %w", err)
	}
	closeQuietly(rows)

	wanted := make(map[int64]bool, len(want))
	for _, bookID := range want {
		wanted[bookID] = true
		if !have[bookID] {
			if _, err := r.exec(ctx, `INSERT INTO library_books (library_id, book_id) VALUES (?, ?)`, libraryID, bookID); err != nil {
				return fmt.Errorf("failed to shelve book %d: %w", bookID, err)
			}
		}
	}
	for bookID := range have {
		if !wanted[bookID] {
			if _, err := r.exec(ctx, `DELETE FROM library_books WHERE library_id = ? AND book_id = ?`, libraryID, bookID); err != nil {
				return fmt.Errorf("failed to unshelve book %d: %w", bookID, err)
			}
		}
	}
	return nil
}

// DeleteLibrary removes the library, its shelf and its librarian.
func (db *DB) DeleteLibrary(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(r runner) error {
		if _, err := r.exec(ctx, `DELETE FROM library_books WHERE library_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear shelf of library %d: %w", id, err)
		}
		if _, err := r.exec(ctx, `DELETE FROM librarians WHERE library_id = ?`, id); err != nil {
			return fmt.Errorf("failed to remove librarian of library %d: %w", id, err)
		}
		if err := r.execAffecting(ctx, `DELETE FROM libraries WHERE id = ?`, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete library %d: %w", id, err)
		}
		return nil
	})
}

// AddBookToLibrary shelves a book. Adding a book twice is a no-op.
func (db *DB) AddBookToLibrary(ctx context.Context, libraryID, bookID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(r runner) error {
		ok, err := r.exists(ctx, `SELECT 1 FROM libraries WHERE id = ?`, libraryID)
		if err != nil {
			return fmt.Errorf("failed to check library %d: %w", libraryID, err)
		}
		if !ok {
			return ErrNotFound
		}
		if err := checkBooksExist(ctx, r, []int64{bookID}); err != nil {
			return err
		}
		shelved, err := r.exists(ctx, `SELECT 1 FROM library_books WHERE library_id = ? AND book_id = ?`, libraryID, bookID)
		if err != nil {
			return fmt.Errorf("failed to check shelf: %w", err)
		}
		if shelved {
			return nil
		}
		if _, err := r.exec(ctx, `INSERT INTO library_books (library_id, book_id) VALUES (?, ?)`, libraryID, bookID); err != nil {
			return fmt.Errorf("failed to shelve book %d: %w", bookID, err)
		}
		return nil
	})
}

// RemoveBookFromLibrary takes a book off the shelf; ErrNotFound if it was not there.
func (db *DB) RemoveBookFromLibrary(ctx context.Context, libraryID, bookID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.run().execAffecting(ctx, `DELETE FROM library_books WHERE library_id = ? AND book_id = ?`, libraryID, bookID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to unshelve book %d: %w", bookID, err)
	}
	return err
}

// GetLibrarianForLibrary returns the library's librarian, or ErrNotFound.
func (db *DB) GetLibrarianForLibrary(ctx context.Context, libraryID int64) (*models.Librarian, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	l := &models.Librarian{}
	err := db.run().queryRow(ctx, `SELECT id, name, library_id FROM librarians WHERE library_id = ?`, libraryID).
		Scan(&l.ID, &l.Name, &l.LibraryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get librarian for library %d: %w", libraryID, err)
	}
	return l, nil
}

// AssignLibrarian sets the library's one librarian, renaming the existing
// record when there is one. created reports whether a row was inserted.
func (db *DB) AssignLibrarian(ctx context.Context, libraryID int64, name string) (lib *models.Librarian, created bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.idMu.Lock()
	defer db.idMu.Unlock()

	lib = &models.Librarian{Name: name, LibraryID: libraryID}
	err = db.withTx(ctx, func(r runner) error {
		ok, err := r.exists(ctx, `SELECT 1 FROM libraries WHERE id = ?`, libraryID)
		if err != nil {
			return fmt.Errorf("failed to check library %d: %w", libraryID, err)
		}
		if !ok {
			return ErrNotFound
		}

		var existingID int64
		err = r.queryRow(ctx, `SELECT id FROM librarians WHERE library_id = ?`, libraryID).Scan(&existingID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id, err := allocateID(ctx, r, "librarians")
			if err != nil {
				return err
			}
			if _, err := r.exec(ctx, `INSERT INTO librarians (id, name, library_id) VALUES (?, ?, ?)`, id, name, libraryID); err != nil {
				return fmt.Errorf("failed to insert librarian: %w", err)
			}
			lib.ID = id
			created = true
		case err != nil:
			return fmt.Errorf("failed to look up librarian: %w", err)
		default:
			if _, err := r.exec(ctx, `UPDATE librarians SET name = ? WHERE id = ?`, name, existingID); err != nil {
				return fmt.Errorf("failed to rename librarian %d: %w", existingID, err)
			}
			lib.ID = existingID
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return lib, created, nil
}

// checkBooksExist returns ErrInvalidReference when any id does not resolve.
func checkBooksExist(ctx context.Context, r runner, bookIDs []int64) error {
	if len(bookIDs) == 0 {
		return nil
	}
	var n int
	err := r.queryRow(ctx,
		`SELECT COUNT(*) FROM books WHERE id IN (`+placeholders(len(bookIDs))+`)`,
		int64Args(bookIDs)...).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to check books: %w", err)
	}
	if n != len(bookIDs) {
		return ErrInvalidReference
	}
	return nil
}

// uniqueIDs drops duplicates while keeping the first-seen order.
func uniqueIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
