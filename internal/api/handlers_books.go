// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// bookFilterFromQuery reads the book list filters.
func bookFilterFromQuery(r *http.Request, fe validation.FieldErrors) models.BookFilter {
	q := r.URL.Query()
	f := models.BookFilter{
		AuthorID:        queryID(r, "author", fe),
		Title:           strings.TrimSpace(q.Get("title")),
		PublicationYear: queryInt(r, "publication_year", fe),
		MinYear:         queryInt(r, "min_year", fe),
		MaxYear:         queryInt(r, "max_year", fe),
		Search:          strings.TrimSpace(q.Get("search")),
		Ordering:        strings.TrimSpace(q.Get("ordering")),
	}
	return f
}

// listBooks answers a filtered book list, narrowed by scope.
func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request, scope func(*models.BookFilter)) {
	rw := NewResponseWriter(w, r)
	fe := validation.FieldErrors{}
	f := bookFilterFromQuery(r, fe)
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}
	if scope != nil {
		scope(&f)
	}

	books, err := h.db.ListBooks(r.Context(), f)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(books)
}

// BookList godoc
// @Summary List books
// @Description Filter by author, title, publication_year, min_year and max_year; search title and author name; order by title, author__name or publication_year
// @Tags Books
// @Produce json
// @Param author query int false "Author id"
// @Param search query string false "Case-insensitive search"
// @Param ordering query string false "Ordering field, '-' for descending"
// @Success 200 {array} models.Book
// @Failure 400 {object} models.APIResponse
// @Router /books [get]
func (h *Handler) BookList(w http.ResponseWriter, r *http.Request) {
	h.listBooks(w, r, nil)
}

// BookGet godoc
// @Summary Retrieve a book
// @Tags Books
// @Produce json
// @Param id path int true "Book id"
// @Success 200 {object} models.Book
// @Failure 404 {object} models.APIResponse
// @Router /books/{id} [get]
func (h *Handler) BookGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Book"))
		return
	}
	book, err := h.db.GetBook(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Book")
		return
	}
	rw.OK(book)
}

// checkBook validates req for a create or update of book. full requires
// every writable field. It returns false after writing the response.
func (h *Handler) checkBook(w http.ResponseWriter, r *http.Request, req *models.BookRequest, book *models.Book, fe validation.FieldErrors, full bool) bool {
	if full {
		requireFields(fe, req.Missing())
	}
	req.ApplyTo(book)

	if !h.validate(w, r, validation.KindBook, book, fe) {
		return false
	}
	if req.AuthorID != nil && *req.AuthorID > 0 && len(fe["author"]) == 0 {
		exists, err := h.db.AuthorExists(r.Context(), book.AuthorID)
		if err != nil {
			NewResponseWriter(w, r).InternalError(err)
			return false
		}
		if !exists {
			fe.Add("author", invalidPKMsg(book.AuthorID))
		}
	}
	if len(fe) > 0 {
		NewResponseWriter(w, r).ValidationError(fe)
		return false
	}
	return true
}

// createBook stores a new book owned by the principal.
func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	principal := auth.PrincipalFromContext(r.Context())

	var req models.BookRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}

	ownerID := principal.UserID
	book := &models.Book{Owner: &ownerID}
	if !h.checkBook(w, r, &req, book, fe, true) {
		return
	}

	if err := h.db.CreateBook(r.Context(), book); err != nil {
		if errors.Is(err, database.ErrInvalidReference) {
			rw.ValidationError(validation.FieldErrors{"author": {invalidPKMsg(book.AuthorID)}})
			return
		}
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("book_id", book.ID).Msg("Book created")
	rw.Created("Book created successfully", book)
}

// BookCreate godoc
// @Summary Create a book
// @Tags Books
// @Accept json
// @Produce json
// @Param book body models.BookRequest true "Book"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Security TokenAuth
// @Router /books [post]
func (h *Handler) BookCreate(w http.ResponseWriter, r *http.Request) {
	h.createBook(w, r)
}

// BookUpdate handles PUT and PATCH on /books/{id}. Owners, librarians and
// admins may edit.
func (h *Handler) BookUpdate(w http.ResponseWriter, r *http.Request) {
	h.updateBook(w, r, authz.KindBook, nil)
}

// updateBook loads the book, applies scope and checks ownership against
// kind before writing.
func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request, kind string, scope func(*models.Book) bool) {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, authz.ActionUpdate, kind) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Book"))
		return
	}
	book, err := h.db.GetBook(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Book")
		return
	}
	if scope != nil && !scope(book) {
		rw.NotFound(notFound("Book"))
		return
	}
	if !h.authorize(w, r, authz.ActionUpdate, authz.Owned(kind, book.OwnerID())) {
		return
	}

	var req models.BookRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	if !h.checkBook(w, r, &req, book, fe, isFullUpdate(r)) {
		return
	}

	if err := h.db.UpdateBook(r.Context(), book); err != nil {
		if errors.Is(err, database.ErrInvalidReference) {
			rw.ValidationError(validation.FieldErrors{"author": {invalidPKMsg(book.AuthorID)}})
			return
		}
		respondStoreError(rw, err, "Book")
		return
	}
	rw.Updated("Book updated successfully", book)
}

// BookDelete godoc
// @Summary Delete a book
// @Description Admin-equivalent principals only
// @Tags Books
// @Param id path int true "Book id"
// @Success 204
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Security TokenAuth
// @Router /books/{id} [delete]
func (h *Handler) BookDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteBook(w, r, authz.KindBook, nil)
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request, kind string, scope func(*models.Book) bool) {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, authz.ActionDelete, kind) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Book"))
		return
	}
	book, err := h.db.GetBook(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Book")
		return
	}
	if scope != nil && !scope(book) {
		rw.NotFound(notFound("Book"))
		return
	}
	if !h.authorize(w, r, authz.ActionDelete, authz.Owned(kind, book.OwnerID())) {
		return
	}

	if err := h.db.DeleteBook(r.Context(), id); err != nil {
		respondStoreError(rw, err, "Book")
		return
	}
	logging.Ctx(r.Context()).Info().Int64("book_id", id).Msg("Book deleted")
	rw.NoContent()
}

// ownedBy scopes a book to the request principal.
func ownedBy(r *http.Request) func(*models.Book) bool {
	principal := auth.PrincipalFromContext(r.Context())
	return func(b *models.Book) bool {
		return principal.Owns(b.Owner)
	}
}

// MyBookList godoc
// @Summary List the caller's books
// @Tags My Books
// @Produce json
// @Success 200 {array} models.Book
// @Failure 401 {object} models.APIResponse
// @Security TokenAuth
// @Router /my/books [get]
func (h *Handler) MyBookList(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	h.listBooks(w, r, func(f *models.BookFilter) {
		ownerID := principal.UserID
		f.OwnerID = &ownerID
	})
}

// MyBookCreate stores a book owned by the caller.
func (h *Handler) MyBookCreate(w http.ResponseWriter, r *http.Request) {
	h.createBook(w, r)
}

// MyBookGet returns one of the caller's books. Books owned by someone else
// do not exist from here.
func (h *Handler) MyBookGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.authorize(w, r, authz.ActionRead, authz.Kind(authz.KindOwnedBook)) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Book"))
		return
	}
	book, err := h.db.GetBook(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Book")
		return
	}
	if !ownedBy(r)(book) {
		rw.NotFound(notFound("Book"))
		return
	}
	rw.OK(book)
}

// MyBookUpdate handles PUT and PATCH on /my/books/{id}.
func (h *Handler) MyBookUpdate(w http.ResponseWriter, r *http.Request) {
	h.updateBook(w, r, authz.KindOwnedBook, ownedBy(r))
}

// MyBookDelete removes one of the caller's books.
func (h *Handler) MyBookDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteBook(w, r, authz.KindOwnedBook, ownedBy(r))
}
