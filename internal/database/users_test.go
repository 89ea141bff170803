// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/shelfwise/internal/models"
)

func TestCreateUser_CreatesProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := mustCreateUser(t, db, "alice", "")
	if u.ID == 0 {
		t.Fatal("CreateUser did not assign an id")
	}
	if u.DateJoined.IsZero() {
		t.Error("CreateUser did not set DateJoined")
	}

	got, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Profile == nil {
		t.Fatal("profile row missing after CreateUser")
	}
	if got.Role() != models.RoleMember {
		t.Errorf("default role = %q, want %q", got.Role(), models.RoleMember)
	}
}

func TestCreateUser_RejectsInvalidRole(t *testing.T) {
	db := setupTestDB(t)
	u := &models.User{Username: "bob", PasswordHash: "x", IsActive: true}
	if err := db.CreateUser(context.Background(), u, "Overlord"); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestCreateUser_DuplicateUsernameIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	mustCreateUser(t, db, "Carol", models.RoleMember)

	dup := &models.User{Username: "carol", PasswordHash: "x", IsActive: true}
	err := db.CreateUser(context.Background(), dup, models.RoleMember)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("CreateUser duplicate: err = %v, want ErrDuplicate", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustCreateUser(t, db, "Dave", models.RoleLibrarian)

	got, err := db.GetUserByUsername(ctx, "DAVE")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.Role() != models.RoleLibrarian {
		t.Errorf("role = %q, want Librarian", got.Role())
	}

	if _, err := db.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestUserWithoutProfile_ResolvesMember(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.run().exec(ctx, `INSERT INTO users (id, username, email, password_hash, first_name, last_name,
		is_staff, is_superuser, is_active, date_joined) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(99), "legacy", "", "x", "", "", false, false, true, db.now())
	if err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}

	u, err := db.GetUserByID(ctx, 99)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.Profile != nil {
		t.Fatalf("expected no profile, got %+v", u.Profile)
	}
	if u.Role() != models.RoleMember {
		t.Errorf("role = %q, want Member", u.Role())
	}

	stats, err := db.GetRoleStats(ctx)
	if err != nil {
		t.Fatalf("GetRoleStats: %v", err)
	}
	if stats.ByRole[models.RoleMember] != 1 || stats.TotalUsers != 1 {
		t.Errorf("stats = %+v, want one Member", stats)
	}

	previous, err := db.SetUserRole(ctx, 99, models.RoleLibrarian)
	if err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	if previous != models.RoleMember {
		t.Errorf("previous role = %q, want Member", previous)
	}
	u, _ = db.GetUserByID(ctx, 99)
	if u.Role() != models.RoleLibrarian {
		t.Errorf("role after backfill = %q, want Librarian", u.Role())
	}
}

func TestEmailInUse(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice", "")

	tests := []struct {
		name    string
		email   string
		exclude int64
		want    bool
	}{
		{"same address other user", "alice@example.com", 0, true},
		{"case insensitive", "ALICE@Example.com", 0, true},
		{"own address", "alice@example.com", alice.ID, false},
		{"unused", "new@example.com", 0, false},
		{"empty never in use", "  ", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.EmailInUse(ctx, tt.email, tt.exclude)
			if err != nil {
				t.Fatalf("EmailInUse: %v", err)
			}
			if got != tt.want {
				t.Errorf("EmailInUse(%q, %d) = %v, want %v", tt.email, tt.exclude, got, tt.want)
			}
		})
	}
}

func TestUpdateUserAndProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, db, "erin", "")

	u.Email = "erin@library.org"
	u.FirstName = "Erin"
	if err := db.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	p := &models.Profile{UserID: u.ID, Bio: "Reads a lot", Location: "Lagos", BirthDate: &birth}
	if err := db.UpdateProfile(ctx, p); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	got, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Email != "erin@library.org" || got.FirstName != "Erin" {
		t.Errorf("user not updated: %+v", got)
	}
	if got.Profile.Bio != "Reads a lot" || got.Profile.Location != "Lagos" {
		t.Errorf("profile not updated: %+v", got.Profile)
	}
	if got.Profile.BirthDate == nil || got.Profile.BirthDate.Year() != 1990 {
		t.Errorf("birth date = %v", got.Profile.BirthDate)
	}
	if got.Role() != models.RoleMember {
		t.Errorf("UpdateProfile must not touch the role, got %q", got.Role())
	}

	missing := &models.User{ID: 404}
	if err := db.UpdateUser(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUser missing: err = %v", err)
	}
}

func TestUpdateAccount_SingleTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, db, "gwen", "")

	u.Email = "gwen@library.org"
	u.LastName = "Stacy"
	p := &models.Profile{Bio: "Poetry shelf", Location: "Accra"}
	if err := db.UpdateAccount(ctx, u, p); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if p.UserID != u.ID {
		t.Errorf("profile user id = %d, want %d", p.UserID, u.ID)
	}

	got, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Email != "gwen@library.org" || got.LastName != "Stacy" || got.Profile.Bio != "Poetry shelf" {
		t.Errorf("account not updated: %+v / %+v", got, got.Profile)
	}

	// A profile for another user aborts before anything is written.
	u.Email = "changed@library.org"
	if err := db.UpdateAccount(ctx, u, &models.Profile{UserID: u.ID + 100}); err == nil {
		t.Error("mismatched profile must fail")
	}
	got, _ = db.GetUserByID(ctx, u.ID)
	if got.Email != "gwen@library.org" {
		t.Errorf("email = %q after failed update", got.Email)
	}

	if err := db.UpdateAccount(ctx, &models.User{ID: 404}, &models.Profile{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateAccount missing: err = %v", err)
	}
}

func TestDeleteUser_CascadesProfileAndToken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, db, "frank", "")

	if err := db.InsertToken(ctx, &models.Token{Key: "k1", UserID: u.ID}); err != nil {
		t.Fatalf("InsertToken: %v", err)
	}
	if err := db.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	var profiles, tokens int
	_ = db.run().queryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE user_id = ?`, u.ID).Scan(&profiles)
	_ = db.run().queryRow(ctx, `SELECT COUNT(*) FROM tokens WHERE user_id = ?`, u.ID).Scan(&tokens)
	if profiles != 0 || tokens != 0 {
		t.Errorf("after delete: %d profiles, %d tokens remain", profiles, tokens)
	}
	if err := db.DeleteUser(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteUser: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_CascadesContent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	gone := mustCreateUser(t, db, "gone", "")
	stays := mustCreateUser(t, db, "stays", "")

	author := &models.Author{Name: "Chinua Achebe", CreatedBy: &gone.ID}
	if err := db.CreateAuthor(ctx, author); err != nil {
		t.Fatalf("CreateAuthor: %v", err)
	}
	owned := mustCreateBook(t, db, "Things Fall Apart", 1958, author.ID, &gone.ID)
	kept := mustCreateBook(t, db, "Arrow of God", 1964, author.ID, &stays.ID)
	lib := &models.Library{Name: "Central"}
	if err := db.CreateLibrary(ctx, lib, []int64{owned.ID, kept.ID}); err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}

	ownPost := mustCreatePost(t, db, gone.ID, "Mine", "body", "reviews")
	otherPost := mustCreatePost(t, db, stays.ID, "Theirs", "body")
	onOwnPost := &models.Comment{PostID: ownPost.ID, AuthorID: stays.ID, Content: "nice"}
	onOtherPost := &models.Comment{PostID: otherPost.ID, AuthorID: gone.ID, Content: "hello"}
	keptComment := &models.Comment{PostID: otherPost.ID, AuthorID: stays.ID, Content: "mine"}
	for _, c := range []*models.Comment{onOwnPost, onOtherPost, keptComment} {
		if err := db.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
	}

	if err := db.DeleteUser(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := db.GetPost(ctx, ownPost.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("own post: err = %v", err)
	}
	for _, c := range []*models.Comment{onOwnPost, onOtherPost} {
		if _, err := db.GetComment(ctx, c.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("comment %q: err = %v", c.Content, err)
		}
	}
	if _, err := db.GetComment(ctx, keptComment.ID); err != nil {
		t.Errorf("unrelated comment removed: %v", err)
	}
	if _, err := db.GetBook(ctx, owned.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("owned book: err = %v", err)
	}
	if _, err := db.GetBook(ctx, kept.ID); err != nil {
		t.Errorf("other book removed: %v", err)
	}

	got, err := db.GetLibrary(ctx, lib.ID)
	if err != nil {
		t.Fatalf("GetLibrary: %v", err)
	}
	if len(got.Books) != 1 || got.Books[0].ID != kept.ID {
		t.Errorf("library shelf = %v", titles(got.Books))
	}

	a, err := db.GetAuthor(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if a.CreatedBy != nil {
		t.Errorf("author created_by = %d, want nil", *a.CreatedBy)
	}
}

func TestGetRoleStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustCreateUser(t, db, "admin", models.RoleAdmin)
	mustCreateUser(t, db, "lib1", models.RoleLibrarian)
	mustCreateUser(t, db, "lib2", models.RoleLibrarian)
	mustCreateUser(t, db, "member", "")

	stats, err := db.GetRoleStats(ctx)
	if err != nil {
		t.Fatalf("GetRoleStats: %v", err)
	}
	want := map[string]int{models.RoleAdmin: 1, models.RoleLibrarian: 2, models.RoleMember: 1}
	for role, n := range want {
		if stats.ByRole[role] != n {
			t.Errorf("ByRole[%s] = %d, want %d", role, stats.ByRole[role], n)
		}
	}
	if stats.TotalUsers != 4 {
		t.Errorf("TotalUsers = %d, want 4", stats.TotalUsers)
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 4 || users[0].Username != "admin" {
		t.Errorf("ListUsers order: %+v", users)
	}
}
