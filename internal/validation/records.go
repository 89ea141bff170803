// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package validation

import "context"

// BookForm is the form variant of a book where the author is typed by name,
// as entered through the admin CLI.
type BookForm struct {
	Title           string
	AuthorName      string
	PublicationYear int
}

// AuthorForm is the form variant of an author.
type AuthorForm struct {
	Name string
}

// Account is the user record checked on signup and on profile update.
type Account struct {
	// UserID is the account being edited, or 0 on signup. It is excluded
	// from the e-mail uniqueness check.
	UserID   int64
	Username string
	Email    string

	// Password is checked against the registry's policy when non-empty.
	Password string

	// EmailRequired rejects an empty e-mail (signup); profile updates may
	// leave it blank.
	EmailRequired bool
}

// EmailLookup answers whether an e-mail address belongs to another user.
// *database.DB satisfies it.
type EmailLookup interface {
	EmailInUse(ctx context.Context, email string, excludeUserID int64) (bool, error)
}
