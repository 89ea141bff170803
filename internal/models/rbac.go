// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
rbac.go - Users, Profiles and Roles

Key Structures:
  - User: Authentication identity with staff/superuser flags
  - Profile: 1:1 companion record holding the declared role and bio fields
  - Role constants: Admin, Librarian, Member

A Profile is created in the same transaction as its User and removed with it.
A user without a profile row is treated as a Member.
*/

package models

import (
	"strings"
	"time"
)

// Role constants define the declared roles a profile can hold.
// These align with the Casbin policy definitions in internal/authz/policy.csv.
const (
	// RoleAdmin can reach the admin dashboard and is admin-equivalent for
	// catalog deletes and user management.
	RoleAdmin = "Admin"

	// RoleLibrarian manages libraries and may edit any book or author.
	RoleLibrarian = "Librarian"

	// RoleMember is the default role.
	RoleMember = "Member"
)

// DefaultRole is assigned to new profiles and to users without a profile.
const DefaultRole = RoleMember

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleAdmin, RoleLibrarian, RoleMember}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeRole maps case variants ("admin", "LIBRARIAN") onto the canonical
// role name. Unknown values are returned unchanged so validation can reject them.
func NormalizeRole(role string) string {
	for _, r := range ValidRoles {
		if strings.EqualFold(r, strings.TrimSpace(role)) {
			return r
		}
	}
	return role
}

// User is an authentication identity.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`

	// Profile is populated by lookups that join the profile row.
	Profile *Profile `json:"profile,omitempty"`
}

// Role returns the declared role from the attached profile, or DefaultRole.
func (u *User) Role() string {
	if u.Profile == nil || u.Profile.Role == "" {
		return DefaultRole
	}
	return u.Profile.Role
}

// Profile holds the per-user role and the blog profile fields.
type Profile struct {
	UserID    int64      `json:"user_id"`
	Role      string     `json:"role"`
	Bio       string     `json:"bio"`
	Location  string     `json:"location"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// NewProfile returns the profile created alongside a new user.
func NewProfile(userID int64, role string) *Profile {
	if role == "" {
		role = DefaultRole
	}
	return &Profile{UserID: userID, Role: role}
}

// RoleStats counts profiles per role for the admin dashboard.
type RoleStats struct {
	TotalUsers int            `json:"total_users"`
	ByRole     map[string]int `json:"by_role"`
}
