// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/shelfwise/internal/models"
)

func TestLibraryCreate_RoleGuard(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)
	body := map[string]interface{}{"name": "Central"}

	assertStatusCode(t, ts.do(t, http.MethodPost, "/api/v1/libraries/", "", body), http.StatusUnauthorized)
	assertStatusCode(t, ts.do(t, http.MethodPost, "/api/v1/libraries/", "alice", body), http.StatusForbidden)
	assertStatusCode(t, ts.do(t, http.MethodPost, "/api/v1/libraries/", "libby", body), http.StatusCreated)
	assertStatusCode(t, ts.do(t, http.MethodPost, "/api/v1/libraries/", "root", map[string]interface{}{"name": "Annex"}), http.StatusCreated)
}

func TestLibraryCreate_WithBooks(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)
	author := ts.seedAuthor(t, "Umberto Eco")
	rose := ts.seedBook(t, "The Name of the Rose", 1980, author.ID, "")
	pendulum := ts.seedBook(t, "Foucault's Pendulum", 1988, author.ID, "")

	w := ts.do(t, http.MethodPost, "/api/v1/libraries/", "libby", map[string]interface{}{
		"name":  "Abbey Library",
		"books": []int64{rose.ID, pendulum.ID, rose.ID},
	})
	assertStatusCode(t, w, http.StatusCreated)
	var library models.Library
	decodeData(t, w, &library)
	assert.Equal(t, "Abbey Library", library.Name)
	assert.Len(t, library.Books, 2, "duplicate ids are shelved once")

	w = ts.do(t, http.MethodPost, "/api/v1/libraries/", "libby", map[string]interface{}{
		"name":  "Ghost Library",
		"books": []int64{rose.ID, 9999},
	})
	assertStatusCode(t, w, http.StatusBadRequest)
	assertFieldError(t, assertErrorCode(t, w, ErrCodeValidationFailed), "books", msgUnknownBooks)
}

func TestLibraryWrite_MemberDeniedBeforeLookup(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)

	assertStatusCode(t, ts.do(t, http.MethodDelete, "/api/v1/libraries/9999", "alice", nil), http.StatusForbidden)
	assertStatusCode(t, ts.do(t, http.MethodDelete, "/api/v1/libraries/9999", "", nil), http.StatusUnauthorized)
	assertStatusCode(t, ts.do(t, http.MethodDelete, "/api/v1/libraries/9999", "libby", nil), http.StatusForbidden)
	assertStatusCode(t, ts.do(t, http.MethodDelete, "/api/v1/libraries/9999", "root", nil), http.StatusNotFound)
}

func TestLibraryShelf_AddAndRemove(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)
	author := ts.seedAuthor(t, "Clarice Lispector")
	book := ts.seedBook(t, "The Hour of the Star", 1977, author.ID, "")

	w := ts.do(t, http.MethodPost, "/api/v1/libraries/", "libby", map[string]interface{}{"name": "Rio"})
	assertStatusCode(t, w, http.StatusCreated)
	var library models.Library
	decodeData(t, w, &library)
	shelf := fmt.Sprintf("/api/v1/libraries/%d/books/%d", library.ID, book.ID)

	assertStatusCode(t, ts.do(t, http.MethodPut, shelf, "alice", nil), http.StatusForbidden)
	assertStatusCode(t, ts.do(t, http.MethodPut, shelf, "libby", nil), http.StatusOK)
	assertStatusCode(t, ts.do(t, http.MethodPut, shelf, "libby", nil), http.StatusOK)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/libraries/%d/books", library.ID), "", nil)
	assertStatusCode(t, w, http.StatusOK)
	var books []models.Book
	decodeBody(t, w, &books)
	require.Len(t, books, 1)

	missing := fmt.Sprintf("/api/v1/libraries/%d/books/9999", library.ID)
	assertStatusCode(t, ts.do(t, http.MethodPut, missing, "libby", nil), http.StatusNotFound)

	assertStatusCode(t, ts.do(t, http.MethodDelete, shelf, "libby", nil), http.StatusNoContent)
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/libraries/%d", library.ID), "", nil)
	decodeBody(t, w, &library)
	assert.Empty(t, library.Books)
}

func TestLibraryUpdate_NilBooksKeepsShelf(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)
	author := ts.seedAuthor(t, "Naguib Mahfouz")
	book := ts.seedBook(t, "Palace Walk", 1956, author.ID, "")

	w := ts.do(t, http.MethodPost, "/api/v1/libraries/", "libby", map[string]interface{}{
		"name": "Cairo", "books": []int64{book.ID},
	})
	var library models.Library
	decodeData(t, w, &library)
	path := fmt.Sprintf("/api/v1/libraries/%d", library.ID)

	assertStatusCode(t, ts.do(t, http.MethodPut, path, "libby", map[string]interface{}{}), http.StatusBadRequest)

	w = ts.do(t, http.MethodPatch, path, "libby", map[string]interface{}{"name": "Cairo Central"})
	assertStatusCode(t, w, http.StatusOK)
	decodeData(t, w, &library)
	assert.Equal(t, "Cairo Central", library.Name)
	assert.Len(t, library.Books, 1)

	w = ts.do(t, http.MethodPatch, path, "libby", map[string]interface{}{"books": []int64{}})
	assertStatusCode(t, w, http.StatusOK)
	decodeData(t, w, &library)
	assert.Empty(t, library.Books)
}

func TestLibrarianAssign(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)

	w := ts.do(t, http.MethodPost, "/api/v1/libraries/", "root", map[string]interface{}{"name": "Alexandria"})
	var library models.Library
	decodeData(t, w, &library)
	path := fmt.Sprintf("/api/v1/libraries/%d/librarian", library.ID)

	assertStatusCode(t, ts.do(t, http.MethodGet, path, "", nil), http.StatusNotFound)
	assertStatusCode(t, ts.do(t, http.MethodPut, path, "alice", map[string]interface{}{"name": "Hypatia"}), http.StatusForbidden)

	w = ts.do(t, http.MethodPut, path, "libby", map[string]interface{}{"name": ""})
	assertStatusCode(t, w, http.StatusBadRequest)

	assertStatusCode(t, ts.do(t, http.MethodPut, path, "libby", map[string]interface{}{"name": "Hypatia"}), http.StatusCreated)
	w = ts.do(t, http.MethodPut, path, "libby", map[string]interface{}{"name": "Callimachus"})
	assertStatusCode(t, w, http.StatusOK)

	w = ts.do(t, http.MethodGet, path, "", nil)
	assertStatusCode(t, w, http.StatusOK)
	var librarian models.Librarian
	decodeBody(t, w, &librarian)
	assert.Equal(t, "Callimachus", librarian.Name)
	assert.Equal(t, library.ID, librarian.LibraryID)
}
