// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/shelfwise/internal/models"
)

func TestCreateLibrary_WithBooks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, _, books := seedCatalog(t, db)

	lib := &models.Library{Name: "Central"}
	require.NoError(t, db.CreateLibrary(ctx, lib, []int64{books[2].ID, books[0].ID, books[0].ID}))
	require.NotZero(t, lib.ID)

	got, err := db.GetLibrary(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, "Central", got.Name)
	assert.Equal(t, []string{"1984", "Brave New World"}, titles(got.Books))
	assert.Nil(t, got.Librarian)
}

func TestCreateLibrary_UnknownBook(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.CreateLibrary(ctx, &models.Library{Name: "Empty"}, []int64{12})
	require.ErrorIs(t, err, ErrInvalidReference)

	libs, err := db.ListLibraries(ctx)
	require.NoError(t, err)
	assert.Empty(t, libs, "failed create must not leave a library behind")
}

func TestUpdateLibrary_ReconcilesShelf(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, _, books := seedCatalog(t, db)

	lib := &models.Library{Name: "Branch"}
	require.NoError(t, db.CreateLibrary(ctx, lib, []int64{books[0].ID, books[1].ID}))

	// Keep 1984, drop Animal Farm, add Brave New World.
	require.NoError(t, db.UpdateLibrary(ctx, lib.ID, "Branch West", []int64{books[0].ID, books[2].ID}))
	got, err := db.GetLibrary(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, "Branch West", got.Name)
	assert.Equal(t, []string{"1984", "Brave New World"}, titles(got.Books))

	// nil leaves the shelf alone.
	require.NoError(t, db.UpdateLibrary(ctx, lib.ID, "Branch East", nil))
	got, err = db.GetLibrary(ctx, lib.ID)
	require.NoError(t, err)
	assert.Len(t, got.Books, 2)

	// An empty list clears it.
	require.NoError(t, db.UpdateLibrary(ctx, lib.ID, "Branch East", []int64{}))
	got, err = db.GetLibrary(ctx, lib.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Books)

	assert.ErrorIs(t, db.UpdateLibrary(ctx, 999, "x", nil), ErrNotFound)
	assert.ErrorIs(t, db.UpdateLibrary(ctx, lib.ID, "x", []int64{999}), ErrInvalidReference)
}

func TestLibraryShelfOperations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, _, books := seedCatalog(t, db)

	lib := &models.Library{Name: "Annex"}
	require.NoError(t, db.CreateLibrary(ctx, lib, nil))

	require.NoError(t, db.AddBookToLibrary(ctx, lib.ID, books[1].ID))
	require.NoError(t, db.AddBookToLibrary(ctx, lib.ID, books[1].ID), "adding twice is a no-op")

	shelf, err := db.ListBooks(ctx, models.BookFilter{LibraryID: &lib.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Animal Farm"}, titles(shelf))

	assert.ErrorIs(t, db.AddBookToLibrary(ctx, 999, books[1].ID), ErrNotFound)
	assert.ErrorIs(t, db.AddBookToLibrary(ctx, lib.ID, 999), ErrInvalidReference)

	require.NoError(t, db.RemoveBookFromLibrary(ctx, lib.ID, books[1].ID))
	assert.ErrorIs(t, db.RemoveBookFromLibrary(ctx, lib.ID, books[1].ID), ErrNotFound)
}

func TestAssignLibrarian(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	lib := &models.Library{Name: "Central"}
	require.NoError(t, db.CreateLibrary(ctx, lib, nil))

	_, err := db.GetLibrarianForLibrary(ctx, lib.ID)
	require.ErrorIs(t, err, ErrNotFound)

	first, created, err := db.AssignLibrarian(ctx, lib.ID, "Ada")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := db.AssignLibrarian(ctx, lib.ID, "Grace")
	require.NoError(t, err)
	assert.False(t, created, "a library has exactly one librarian")
	assert.Equal(t, first.ID, second.ID)

	got, err := db.GetLibrarianForLibrary(ctx, lib.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, lib.ID, got.LibraryID)

	_, _, err = db.AssignLibrarian(ctx, 999, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteLibrary_Cascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, _, books := seedCatalog(t, db)

	lib := &models.Library{Name: "Doomed"}
	require.NoError(t, db.CreateLibrary(ctx, lib, []int64{books[0].ID}))
	_, _, err := db.AssignLibrarian(ctx, lib.ID, "Ada")
	require.NoError(t, err)

	require.NoError(t, db.DeleteLibrary(ctx, lib.ID))

	_, err = db.GetLibrary(ctx, lib.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetLibrarianForLibrary(ctx, lib.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetBook(ctx, books[0].ID)
	assert.NoError(t, err, "books outlive the library")

	assert.ErrorIs(t, db.DeleteLibrary(ctx, lib.ID), ErrNotFound)
}

func TestListLibraries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, _, books := seedCatalog(t, db)

	require.NoError(t, db.CreateLibrary(ctx, &models.Library{Name: "West"}, []int64{books[0].ID}))
	east := &models.Library{Name: "East"}
	require.NoError(t, db.CreateLibrary(ctx, east, nil))
	_, _, err := db.AssignLibrarian(ctx, east.ID, "Grace")
	require.NoError(t, err)

	libs, err := db.ListLibraries(ctx)
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.Equal(t, "East", libs[0].Name)
	require.NotNil(t, libs[0].Librarian)
	assert.Equal(t, "Grace", libs[0].Librarian.Name)
	assert.Empty(t, libs[0].Books)
	assert.Equal(t, []string{"1984"}, titles(libs[1].Books))
}

func TestUniqueIDs(t *testing.T) {
	assert.Nil(t, uniqueIDs(nil))
	assert.Equal(t, []int64{}, uniqueIDs([]int64{}))
	assert.Equal(t, []int64{3, 1, 2}, uniqueIDs([]int64{3, 1, 3, 2, 1}))
}
