// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 12

// HashPassword returns the bcrypt hash of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CredentialStore loads users by login name. *database.DB satisfies it.
type CredentialStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// CredentialVerifier checks username/password pairs against stored hashes.
// It backs HTTP Basic auth and the token and login endpoints.
type CredentialVerifier struct {
	users CredentialStore

	// dummyHash is compared against when the user does not exist so that
	// unknown and known usernames take the same time to reject.
	dummyHash string
}

// NewCredentialVerifier creates a verifier. cost should match the cost used
// to hash stored passwords.
func NewCredentialVerifier(users CredentialStore, cost int) (*CredentialVerifier, error) {
	dummy, err := HashPassword("shelfwise-timing-equalizer", cost)
	if err != nil {
		return nil, err
	}
	return &CredentialVerifier{users: users, dummyHash: dummy}, nil
}

// Verify returns the user for a valid username/password pair. Unknown users,
// wrong passwords and inactive accounts all yield ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := v.users.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		CheckPassword(v.dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticatorUnavailable, err)
	}

	if !CheckPassword(u.PasswordHash, password) || !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
