// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func ptr[T any](v T) *T { return &v }

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{RoleLibrarian, true},
		{RoleMember, true},
		{"admin", false},
		{"", false},
		{"Owner", false},
	}
	for _, tt := range tests {
		if got := IsValidRole(tt.role); got != tt.want {
			t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := map[string]string{
		"admin":       RoleAdmin,
		" LIBRARIAN ": RoleLibrarian,
		"Member":      RoleMember,
		"owner":       "owner",
	}
	for in, want := range tests {
		if got := NormalizeRole(in); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUserRole_DefaultsToMember(t *testing.T) {
	u := &User{ID: 1}
	if got := u.Role(); got != RoleMember {
		t.Errorf("Role() without profile = %q, want %q", got, RoleMember)
	}
	u.Profile = NewProfile(1, RoleLibrarian)
	if got := u.Role(); got != RoleLibrarian {
		t.Errorf("Role() = %q, want %q", got, RoleLibrarian)
	}
	if p := NewProfile(2, ""); p.Role != DefaultRole {
		t.Errorf("NewProfile default role = %q, want %q", p.Role, DefaultRole)
	}
}

func TestBookRequest_MissingAndApply(t *testing.T) {
	empty := &BookRequest{}
	if got, want := empty.Missing(), []string{"title", "publication_year", "author"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Missing() = %v, want %v", got, want)
	}

	b := Book{ID: 7, Title: "Old", PublicationYear: 1900, AuthorID: 1}
	(&BookRequest{Title: ptr("New")}).ApplyTo(&b)
	if b.Title != "New" || b.PublicationYear != 1900 || b.AuthorID != 1 {
		t.Errorf("partial ApplyTo changed untouched fields: %+v", b)
	}
}

func TestPostRequest_TagsReplacedOnlyWhenSent(t *testing.T) {
	p := Post{Title: "t", Content: "c", Tags: []string{"go"}}
	(&PostRequest{Title: ptr("t2")}).ApplyTo(&p)
	if !reflect.DeepEqual(p.Tags, []string{"go"}) {
		t.Errorf("tags changed without tags in request: %v", p.Tags)
	}
	(&PostRequest{Tags: []string{}}).ApplyTo(&p)
	if len(p.Tags) != 0 {
		t.Errorf("explicit empty tags should clear, got %v", p.Tags)
	}
}

func TestAPIResponse_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(&APIResponse{Status: StatusSuccess, Message: "ok"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := m["error"]; ok {
		t.Error("error key should be omitted on success")
	}
	if m["status"] != "success" || m["message"] != "ok" {
		t.Errorf("unexpected envelope: %v", m)
	}
}
