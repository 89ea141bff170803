// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

import "time"

// Author writes zero or more books. Deleting an author deletes its books.
type Author struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedBy *int64 `json:"created_by,omitempty"`

	// Books is filled by the author list and detail endpoints.
	Books []Book `json:"books"`
}

// OwnerID returns the user that created the author, if known.
func (a *Author) OwnerID() *int64 { return a.CreatedBy }

// Book is a catalog entry. PublicationYear never exceeds the current year.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	PublicationYear int       `json:"publication_year"`
	AuthorID        int64     `json:"author"`
	AuthorName      string    `json:"author_name,omitempty"`
	Owner           *int64    `json:"owner,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// OwnerID returns the user that created the book, if known.
func (b *Book) OwnerID() *int64 { return b.Owner }

// BookFilter holds the list filters of the book endpoint.
//
// Ordering accepts title, author__name and publication_year, each optionally
// prefixed with "-" for descending order. The default is title.
type BookFilter struct {
	AuthorID        *int64
	Title           string
	PublicationYear *int
	MinYear         *int
	MaxYear         *int
	Search          string
	Ordering        string
	OwnerID         *int64
	LibraryID       *int64
}
