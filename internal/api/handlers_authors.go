// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// AuthorList godoc
// @Summary List authors with their books
// @Tags Authors
// @Produce json
// @Success 200 {array} models.Author
// @Router /authors [get]
func (h *Handler) AuthorList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	authors, err := h.db.ListAuthors(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.OK(authors)
}

// AuthorGet godoc
// @Summary Retrieve an author with nested books
// @Tags Authors
// @Produce json
// @Param id path int true "Author id"
// @Success 200 {object} models.Author
// @Failure 404 {object} models.APIResponse
// @Router /authors/{id} [get]
func (h *Handler) AuthorGet(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Author"))
		return
	}
	author, err := h.db.GetAuthor(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Author")
		return
	}
	rw.OK(author)
}

// AuthorBooks returns the books written by an author.
func (h *Handler) AuthorBooks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Author"))
		return
	}
	exists, err := h.db.AuthorExists(r.Context(), id)
	if err != nil {
		rw.InternalError(err)
		return
	}
	if !exists {
		rw.NotFound(notFound("Author"))
		return
	}
	h.listBooks(w, r, func(f *models.BookFilter) {
		f.AuthorID = &id
	})
}

// AuthorCreate godoc
// @Summary Create an author
// @Tags Authors
// @Accept json
// @Produce json
// @Param author body models.AuthorRequest true "Author"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Security TokenAuth
// @Router /authors [post]
func (h *Handler) AuthorCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	principal := auth.PrincipalFromContext(r.Context())

	var req models.AuthorRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	requireFields(fe, req.Missing())

	createdBy := principal.UserID
	author := &models.Author{CreatedBy: &createdBy}
	req.ApplyTo(author)
	if !h.validate(w, r, validation.KindAuthor, author, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.CreateAuthor(r.Context(), author); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created("Author created successfully", author)
}

// AuthorUpdate handles PUT and PATCH on /authors/{id}.
func (h *Handler) AuthorUpdate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, authz.ActionUpdate, authz.KindAuthor) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Author"))
		return
	}
	author, err := h.db.GetAuthor(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Author")
		return
	}
	if !h.authorize(w, r, authz.ActionUpdate, authz.Owned(authz.KindAuthor, author.OwnerID())) {
		return
	}

	var req models.AuthorRequest
	fe, ok := decodeAndCheck(w, r, &req)
	if !ok {
		return
	}
	if isFullUpdate(r) {
		requireFields(fe, req.Missing())
	}
	req.ApplyTo(author)
	if !h.validate(w, r, validation.KindAuthor, author, fe) {
		return
	}
	if len(fe) > 0 {
		rw.ValidationError(fe)
		return
	}

	if err := h.db.UpdateAuthor(r.Context(), author); err != nil {
		respondStoreError(rw, err, "Author")
		return
	}
	rw.Updated("Author updated successfully", author)
}

// AuthorDelete godoc
// @Summary Delete an author and all of its books
// @Tags Authors
// @Param id path int true "Author id"
// @Success 204
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Security TokenAuth
// @Router /authors/{id} [delete]
func (h *Handler) AuthorDelete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.authenticateFirst(w, r, authz.ActionDelete, authz.KindAuthor) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		rw.NotFound(notFound("Author"))
		return
	}
	author, err := h.db.GetAuthor(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Author")
		return
	}
	if !h.authorize(w, r, authz.ActionDelete, authz.Owned(authz.KindAuthor, author.OwnerID())) {
		return
	}

	removed, err := h.db.DeleteAuthor(r.Context(), id)
	if err != nil {
		respondStoreError(rw, err, "Author")
		return
	}
	logging.Ctx(r.Context()).Info().
		Int64("author_id", id).
		Int64("books_removed", removed).
		Msg("Author deleted")
	rw.NoContent()
}
