// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

// Request payloads use pointer fields so PATCH can tell "absent" from "zero".
// PUT handlers call Missing to require every writable field.

// BookRequest is the body of book create and update calls.
type BookRequest struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	AuthorID        *int64  `json:"author" validate:"omitempty,gt=0"`
}

// Missing returns the writable fields absent from the request.
func (r *BookRequest) Missing() []string {
	var out []string
	if r.Title == nil {
		out = append(out, "title")
	}
	if r.PublicationYear == nil {
		out = append(out, "publication_year")
	}
	if r.AuthorID == nil {
		out = append(out, "author")
	}
	return out
}

// ApplyTo copies the present fields onto b.
func (r *BookRequest) ApplyTo(b *Book) {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.PublicationYear != nil {
		b.PublicationYear = *r.PublicationYear
	}
	if r.AuthorID != nil {
		b.AuthorID = *r.AuthorID
	}
}

// AuthorRequest is the body of author create and update calls.
type AuthorRequest struct {
	Name *string `json:"name"`
}

// Missing returns the writable fields absent from the request.
func (r *AuthorRequest) Missing() []string {
	if r.Name == nil {
		return []string{"name"}
	}
	return nil
}

// ApplyTo copies the present fields onto a.
func (r *AuthorRequest) ApplyTo(a *Author) {
	if r.Name != nil {
		a.Name = *r.Name
	}
}

// LibraryRequest is the body of library create and update calls.
type LibraryRequest struct {
	Name    *string `json:"name"`
	BookIDs []int64 `json:"books" validate:"omitempty,dive,gt=0"`
}

// Missing returns the writable fields absent from the request.
func (r *LibraryRequest) Missing() []string {
	if r.Name == nil {
		return []string{"name"}
	}
	return nil
}

// LibrarianRequest assigns a librarian to a library.
type LibrarianRequest struct {
	Name string `json:"name"`
}

// PostRequest is the body of post create and update calls.
type PostRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// Missing returns the writable fields absent from the request.
func (r *PostRequest) Missing() []string {
	var out []string
	if r.Title == nil {
		out = append(out, "title")
	}
	if r.Content == nil {
		out = append(out, "content")
	}
	return out
}

// ApplyTo copies the present fields onto p. Tags are replaced only when sent.
func (r *PostRequest) ApplyTo(p *Post) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Content != nil {
		p.Content = *r.Content
	}
	if r.Tags != nil {
		p.Tags = r.Tags
	}
}

// CommentRequest is the body of comment create and update calls.
type CommentRequest struct {
	Content *string `json:"content"`
}

// CredentialsRequest is exchanged for an API token or a JWT.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=128"`
}

// RegisterRequest creates a new user and its profile.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150,username"`
	Email     string `json:"email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// ProfileRequest updates the caller's own user and profile fields.
type ProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	// BirthDate is a calendar date (YYYY-MM-DD). An empty string clears it.
	BirthDate *string `json:"birth_date"`
}

// RoleRequest changes a user's declared role.
type RoleRequest struct {
	Role string `json:"role" validate:"required"`
}
