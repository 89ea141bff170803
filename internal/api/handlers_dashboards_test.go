// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/shelfwise/internal/models"
)

func TestDashboard_ExactRole(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)

	// A staff account whose declared role is Member.
	staffer := ts.addUser(t, "staffer", models.RoleMember)
	staffer.IsStaff = true
	if _, err := ts.db.Conn().Exec(`UPDATE users SET is_staff = TRUE WHERE id = ?`, staffer.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		user string
		role string
		want int
	}{
		{"", "admin", http.StatusUnauthorized},
		{"", "member", http.StatusUnauthorized},
		{"root", "admin", http.StatusOK},
		{"root", "librarian", http.StatusForbidden},
		{"root", "member", http.StatusForbidden},
		{"libby", "librarian", http.StatusOK},
		{"libby", "admin", http.StatusForbidden},
		{"alice", "member", http.StatusOK},
		{"alice", "admin", http.StatusForbidden},
		{"staffer", "admin", http.StatusForbidden},
		{"staffer", "member", http.StatusOK},
		{"alice", "janitor", http.StatusNotFound},
	}
	for _, tt := range tests {
		name := tt.user + "->" + tt.role
		if tt.user == "" {
			name = "anonymous->" + tt.role
		}
		t.Run(name, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, "/api/v1/dashboards/"+tt.role, tt.user, nil)
			assertStatusCode(t, w, tt.want)
		})
	}
}

func TestDashboard_Payloads(t *testing.T) {
	ts := newTestServer(t)
	ts.addStandardUsers(t)
	author := ts.seedAuthor(t, "Elena Ferrante")
	ts.seedBook(t, "My Brilliant Friend", 2011, author.ID, "alice")

	w := ts.do(t, http.MethodGet, "/api/v1/dashboards/admin", "root", nil)
	assertStatusCode(t, w, http.StatusOK)
	var admin AdminDashboard
	decodeBody(t, w, &admin)
	if admin.Users == nil || admin.Users.TotalUsers != 4 {
		t.Errorf("admin users = %+v, want 4 total", admin.Users)
	}
	if admin.Users != nil && admin.Users.ByRole[models.RoleMember] != 2 {
		t.Errorf("members = %d, want 2", admin.Users.ByRole[models.RoleMember])
	}

	w = ts.do(t, http.MethodGet, "/api/v1/dashboards/member", "alice", nil)
	assertStatusCode(t, w, http.StatusOK)
	var member MemberDashboard
	decodeBody(t, w, &member)
	if member.Role != models.RoleMember || len(member.Books) != 1 {
		t.Errorf("member dashboard = %+v", member)
	}

	w = ts.do(t, http.MethodGet, "/api/v1/dashboards/member", "bob", nil)
	decodeBody(t, w, &member)
	if len(member.Books) != 0 {
		t.Errorf("bob sees %d books, want 0", len(member.Books))
	}
}
