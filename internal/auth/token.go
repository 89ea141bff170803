// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// This file implements the opaque API token: one 40-character hex key per
// user, sent as "Authorization: Token <key>".
//
// Example Usage:
//
//	tokens := auth.NewTokenManager(auth.NewDatabaseTokenStore(db), "database")
//	tok, created, err := tokens.GetOrCreate(ctx, user.ID)
//
//	// Later, resolve a presented key
//	tok, err := tokens.Lookup(ctx, key)
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/models"
)

const (
	// tokenKeyBytes is the number of random bytes in a key (40 hex chars).
	tokenKeyBytes = 20

	// maxKeyAttempts bounds retries on the (astronomically unlikely) key collision.
	maxKeyAttempts = 3
)

// Token store errors.
var (
	// ErrTokenNotFound means no token exists for the key or user.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExists means the user already holds a token, or the key collided.
	ErrTokenExists = errors.New("token already exists")
)

// TokenStore persists API tokens. Implementations must keep at most one
// token per user.
type TokenStore interface {
	GetByKey(ctx context.Context, key string) (*models.Token, error)
	GetByUser(ctx context.Context, userID int64) (*models.Token, error)
	Create(ctx context.Context, t *models.Token) error
	Delete(ctx context.Context, userID int64) error
}

// DatabaseTokenStore keeps tokens in the relational tokens table.
type DatabaseTokenStore struct {
	db *database.DB
}

// NewDatabaseTokenStore wraps db.
func NewDatabaseTokenStore(db *database.DB) *DatabaseTokenStore {
	return &DatabaseTokenStore{db: db}
}

// GetByKey implements TokenStore.
func (s *DatabaseTokenStore) GetByKey(ctx context.Context, key string) (*models.Token, error) {
	t, err := s.db.GetTokenByKey(ctx, key)
	return t, mapStoreErr(err)
}

// GetByUser implements TokenStore.
func (s *DatabaseTokenStore) GetByUser(ctx context.Context, userID int64) (*models.Token, error) {
	t, err := s.db.GetTokenByUser(ctx, userID)
	return t, mapStoreErr(err)
}

// Create implements TokenStore.
func (s *DatabaseTokenStore) Create(ctx context.Context, t *models.Token) error {
	return mapStoreErr(s.db.InsertToken(ctx, t))
}

// Delete implements TokenStore.
func (s *DatabaseTokenStore) Delete(ctx context.Context, userID int64) error {
	return mapStoreErr(s.db.DeleteToken(ctx, userID))
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return ErrTokenNotFound
	case errors.Is(err, database.ErrDuplicate):
		return ErrTokenExists
	}
	return err
}

// GenerateTokenKey returns a fresh random 40-character hex key.
func GenerateTokenKey() (string, error) {
	b := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TokenManager issues, resolves and revokes API tokens.
type TokenManager struct {
	store   TokenStore
	backend string
	logger  zerolog.Logger
}

// NewTokenManager creates a manager over store. backend labels metrics.
func NewTokenManager(store TokenStore, backend string) *TokenManager {
	return &TokenManager{
		store:   store,
		backend: backend,
		logger:  logging.WithComponent("token_manager"),
	}
}

// GetOrCreate returns the user's token, creating one if none exists.
// created reports whether a new key was issued. Two concurrent first
// calls for the same user both end up with the single stored token.
func (m *TokenManager) GetOrCreate(ctx context.Context, userID int64) (tok *models.Token, created bool, err error) {
	defer func() { metrics.RecordTokenOperation(m.backend, "get_or_create", err) }()

	tok, err = m.store.GetByUser(ctx, userID)
	if err == nil {
		return tok, false, nil
	}
	if !errors.Is(err, ErrTokenNotFound) {
		return nil, false, fmt.Errorf("failed to load token: %w", err)
	}

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key, genErr := GenerateTokenKey()
		if genErr != nil {
			return nil, false, genErr
		}
		tok = &models.Token{Key: key, UserID: userID}
		err = m.store.Create(ctx, tok)
		if err == nil {
			m.logger.Debug().Int64("user_id", userID).Str("key", logging.SanitizeToken(key)).Msg("API token issued")
			return tok, true, nil
		}
		if !errors.Is(err, ErrTokenExists) {
			return nil, false, fmt.Errorf("failed to store token: %w", err)
		}
		// Lost a race with a concurrent request for the same user.
		if existing, getErr := m.store.GetByUser(ctx, userID); getErr == nil {
			return existing, false, nil
		}
	}
	return nil, false, fmt.Errorf("failed to issue token after %d attempts: %w", maxKeyAttempts, err)
}

// Lookup resolves a presented key to its token.
func (m *TokenManager) Lookup(ctx context.Context, key string) (tok *models.Token, err error) {
	defer func() { metrics.RecordTokenOperation(m.backend, "lookup", err) }()
	return m.store.GetByKey(ctx, key)
}

// Revoke deletes the user's token. Revoking a user without a token is not
// an error.
func (m *TokenManager) Revoke(ctx context.Context, userID int64) (err error) {
	defer func() { metrics.RecordTokenOperation(m.backend, "revoke", err) }()

	err = m.store.Delete(ctx, userID)
	if errors.Is(err, ErrTokenNotFound) {
		return nil
	}
	return err
}

// Rotate revokes the user's token and issues a new one.
func (m *TokenManager) Rotate(ctx context.Context, userID int64) (*models.Token, error) {
	if err := m.Revoke(ctx, userID); err != nil {
		return nil, err
	}
	tok, _, err := m.GetOrCreate(ctx, userID)
	return tok, err
}
