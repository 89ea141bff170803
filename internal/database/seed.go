// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
)

// demoCatalog is the catalog loaded by SeedDemoData.
var demoCatalog = []struct {
	author string
	books  []struct {
		title string
		year  int
	}
}{
	{"George Orwell", []struct {
		title string
		year  int
	}{{"1984", 1949}, {"Animal Farm", 1945}}},
	{"Chinua Achebe", []struct {
		title string
		year  int
	}{{"Things Fall Apart", 1958}}},
	{"Ursula K. Le Guin", []struct {
		title string
		year  int
	}{{"The Left Hand of Darkness", 1969}, {"The Dispossessed", 1974}}},
}

// SeedResult reports what SeedDemoData inserted.
type SeedResult struct {
	Skipped   bool  `json:"skipped"`
	Authors   int   `json:"authors"`
	Books     int   `json:"books"`
	LibraryID int64 `json:"library_id,omitempty"`
	PostID    int64 `json:"post_id,omitempty"`
}

// SeedDemoData loads a small demo catalog: a few authors and books, one
// library holding all of them with its librarian, and a welcome post written
// by postAuthorID (skipped when zero). It does nothing when any author
// already exists, so running it twice is safe.
func (db *DB) SeedDemoData(ctx context.Context, postAuthorID int64) (*SeedResult, error) {
	log := logging.WithComponent("seed")

	existing, err := db.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		log.Info().Int("authors", len(existing)).Msg("Catalog not empty, skipping demo data")
		return &SeedResult{Skipped: true}, nil
	}

	res := &SeedResult{}
	var bookIDs []int64
	for _, entry := range demoCatalog {
		author := &models.Author{Name: entry.author}
		if err := db.CreateAuthor(ctx, author); err != nil {
			return nil, fmt.Errorf("failed to seed author %q: %w", entry.author, err)
		}
		res.Authors++
		for _, b := range entry.books {
			book := &models.Book{Title: b.title, PublicationYear: b.year, AuthorID: author.ID}
			if err := db.CreateBook(ctx, book); err != nil {
				return nil, fmt.Errorf("failed to seed book %q: %w", b.title, err)
			}
			bookIDs = append(bookIDs, book.ID)
			res.Books++
		}
	}

	library := &models.Library{Name: "Central Library"}
	if err := db.CreateLibrary(ctx, library, bookIDs); err != nil {
		return nil, fmt.Errorf("failed to seed library: %w", err)
	}
	if _, _, err := db.AssignLibrarian(ctx, library.ID, "Ada Reyes"); err != nil {
		return nil, fmt.Errorf("failed to seed librarian: %w", err)
	}
	res.LibraryID = library.ID

	if postAuthorID != 0 {
		post := &models.Post{
			Title:    "Welcome to Shelfwise",
			Content:  "Browse the catalog, join a library and tell us what you are reading.",
			AuthorID: postAuthorID,
			Tags:     []string{"announcements", "welcome"},
		}
		if err := db.CreatePost(ctx, post); err != nil {
			return nil, fmt.Errorf("failed to seed welcome post: %w", err)
		}
		res.PostID = post.ID
	}

	log.Info().
		Int("authors", res.Authors).
		Int("books", res.Books).
		Int64("library_id", res.LibraryID).
		Msg("Seeded demo data")
	return res, nil
}

// EnsureAdmin creates u as a staff superuser with the Admin role unless a
// user with that username already exists. The caller supplies the password
// hash. created is false when the user was already present.
func (db *DB) EnsureAdmin(ctx context.Context, u *models.User) (created bool, err error) {
	existing, err := db.GetUserByUsername(ctx, u.Username)
	if err == nil {
		*u = *existing
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	u.IsStaff = true
	u.IsSuperuser = true
	u.IsActive = true
	if err := db.CreateUser(ctx, u, models.RoleAdmin); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	dbLog := logging.WithComponent("database")
	dbLog.Info().
		Str("username", logging.SanitizeUsername(u.Username)).
		Msg("Created bootstrap admin")
	return true, nil
}
