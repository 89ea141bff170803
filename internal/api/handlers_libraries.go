// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

const msgUnknownBooks = "One or more books do not exist."

// LibraryList returns every library with its books and librarian.
func (h *Handler) LibraryList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	libraries, err := h.db.ListLibraries(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(libraries)
}

// LibraryGet godoc
// @Summary Retrieve a library
// @Tags Libraries
// @Produce json
// @Param id path int true "Library id"
// @Success 200 {object} models.Library
// @Failure 404 {object} models.APIResponse
// @Router /libraries/{id} [get]
func (h *Handler) LibraryGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}
	library, err := h.db.GetLibrary(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Library")
		return
	}
	rw.OK(library)
}

// LibraryCreate godoc
// @Summary Create a library
// @Description Librarian role or admin-equivalent
// @Tags Libraries
// @Accept json
// @Produce json
// @Param library body models.LibraryRequest true "Library"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Security TokenAuth
// @Router /libraries [post]
func (h *Handler) LibraryCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.LibraryRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	requireFields(fe, req.Missing())

	library := &models.Library{}
	if req.Name != nil {
		library.Name = *req.Name
	}
	if !h.validate(w, r, validation.KindLibrary, library, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.CreateLibrary(r.Context(), library, req.BookIDs); err != nil {
		if errors.Is(err, database.ErrInvalidReference) {
			rw.ValidationError(validation.FieldErrors{"books": {msgUnknownBooks}})
			return
		}
		rw.InternalError(err)
		return
	}

	created, err := h.db.GetLibrary(r.Context(), library.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created("Library created successfully", created)
}

// LibraryUpdate handles PUT and PATCH on /libraries/{id}. A books list,
// when sent, replaces the shelf.
func (h *Handler) LibraryUpdate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}
	library, err := h.db.GetLibrary(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Library")
		return
	}

	var req models.LibraryRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	if isFullUpdate(r) {
		requireFields(fe, req.Missing())
	}
	if req.Name != nil {
		library.Name = *req.Name
	}
	if !h.validate(w, r, validation.KindLibrary, library, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.UpdateLibrary(r.Context(), id, library.Name, req.BookIDs); err != nil {
		if errors.Is(err, database.ErrInvalidReference) {
			rw.ValidationError(validation.FieldErrors{"books": {msgUnknownBooks}})
			return
		}
		respondStoreError(rw, err, "Library")
		return
	}

	updated, err := h.db.GetLibrary(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Library")
		return
	}
	rw.Updated("Library updated successfully", updated)
}

// LibraryDelete removes a library with its shelf and librarian.
func (h *Handler) LibraryDelete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}
	if err := h.db.DeleteLibrary(r.Context(), id); err != nil {
		respondStoreError(rw, err, "Library")
		return
	}
	rw.NoContent()
}

// LibraryBooks lists the books shelved in a library. The book list
// filters and ordering apply.
func (h *Handler) LibraryBooks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}
	if _, err := h.db.GetLibrary(r.Context(), id); err != nil {
		respondStoreError(rw, err, "Library")
		return
	}
	h.listBooks(w, r, func(f *models.BookFilter) {
		f.LibraryID = &id
	})
}

// LibraryAddBook shelves a book. Adding a shelved book again is a no-op.
func (h *Handler) LibraryAddBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	libraryID, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}
	bookID, ok := idParam(r, "bookID")
	if !ok {
		rw.NotFound(notFound("Book"))
		return
	}

	err := h.db.AddBookToLibrary(r.Context(), libraryID, bookID)
	switch {
	case errors.Is(err, database.ErrInvalidReference):
		rw.NotFound(notFound("Book"))
		return
	case err != nil:
		respondStoreError(rw, err, "Library")
		return
	}

	library, err := h.db.GetLibrary(r.Context(), libraryID)
	if err != nil {
		respondStoreError(rw, err, "Library")
		return
	}
	rw.Updated("Book added to library", library)
}

// LibraryRemoveBook takes a book off the shelf.
func (h *Handler) LibraryRemoveBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	libraryID, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}
	bookID, ok := idParam(r, "bookID")
	if !ok {
		rw.NotFound(notFound("Book"))
		return
	}
	if err := h.db.RemoveBookFromLibrary(r.Context(), libraryID, bookID); err != nil {
		respondStoreError(rw, err, "Book")
		return
	}
	rw.NoContent()
}

// LibrarianGet godoc
// @Summary Librarian of a library
// @Tags Libraries
// @Produce json
// @Param id path int true "Library id"
// @Success 200 {object} models.Librarian
// @Failure 404 {object} models.APIResponse
// @Router /libraries/{id}/librarian [get]
func (h *Handler) LibrarianGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}
	librarian, err := h.db.GetLibrarianForLibrary(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Librarian")
		return
	}
	rw.OK(librarian)
}

// LibrarianAssign sets the library's one librarian. It answers 201 when a
// librarian record was created and 200 when the existing one was renamed.
func (h *Handler) LibrarianAssign(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Library"))
		return
	}

	var req models.LibrarianRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	librarian := &models.Librarian{Name: req.Name, LibraryID: id}
	if !h.validate(w, r, validation.KindLibrarian, librarian, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	assigned, created, err := h.db.AssignLibrarian(r.Context(), id, librarian.Name)
	if err != nil {
		respondStoreError(rw, err, "Library")
		return
	}
	if created {
		rw.Created("Librarian assigned successfully", assigned)
		return
	}
	rw.Updated("Librarian updated successfully", assigned)
}
