// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

// Library holds a many-to-many set of books.
type Library struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Books []Book `json:"books"`

	// Librarian is nil until one is assigned.
	Librarian *Librarian `json:"librarian,omitempty"`
}

// Librarian is one-to-one with a library.
type Librarian struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	LibraryID int64  `json:"library"`
}
