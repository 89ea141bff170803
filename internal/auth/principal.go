// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
)

// Principal is the resolved identity of a request. The zero value is the
// anonymous principal.
type Principal struct {
	UserID      int64  `json:"id,omitempty"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`

	// Role is the declared profile role. It is empty for anonymous
	// principals and Member for users without a profile.
	Role string `json:"role,omitempty"`

	// Method records which credential scheme authenticated the request.
	Method AuthMode `json:"auth_method,omitempty"`
}

// Anonymous returns the principal of a request without credentials.
func Anonymous() *Principal {
	return &Principal{}
}

// IsAuthenticated reports whether the principal is a known user.
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.UserID != 0
}

// IsAdmin reports admin-equivalence: staff, superuser, or the Admin role.
func (p *Principal) IsAdmin() bool {
	if !p.IsAuthenticated() {
		return false
	}
	return p.IsStaff || p.IsSuperuser || p.Role == models.RoleAdmin
}

// HasRole reports whether the declared role is exactly role.
func (p *Principal) HasRole(role string) bool {
	return p.IsAuthenticated() && role != "" && p.Role == role
}

// Owns reports whether ownerID names this principal.
func (p *Principal) Owns(ownerID *int64) bool {
	return p.IsAuthenticated() && ownerID != nil && *ownerID == p.UserID
}

// UserLookup loads a user with its profile. *database.DB satisfies it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Resolver turns an authenticated subject into a Principal.
//
// The role is read from the persisted profile on every call. Nothing is
// cached, so a role change applies to the very next request.
type Resolver struct {
	users UserLookup
}

// NewResolver creates a resolver over users.
func NewResolver(users UserLookup) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the anonymous principal for a nil subject. A subject whose
// user no longer exists or is inactive yields ErrInvalidCredentials.
func (r *Resolver) Resolve(ctx context.Context, subject *AuthSubject) (*Principal, error) {
	if subject == nil {
		return Anonymous(), nil
	}

	u, err := r.users.GetUserByID(ctx, subject.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticatorUnavailable, err)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	return PrincipalFromUser(u, subject.AuthMethod), nil
}

// PrincipalFromUser builds a principal from a loaded user. A user without a
// profile gets the Member role.
func PrincipalFromUser(u *models.User, method AuthMode) *Principal {
	return &Principal{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Role:        u.Role(),
		Method:      method,
	}
}
