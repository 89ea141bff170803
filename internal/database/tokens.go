// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/shelfwise/internal/models"
)

// GetTokenByUser returns the user's API token, or ErrNotFound.
func (db *DB) GetTokenByUser(ctx context.Context, userID int64) (*models.Token, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	t := &models.Token{}
	err := db.run().queryRow(ctx, `SELECT token_key, user_id, created FROM tokens WHERE user_id = ?`, userID).
		Scan(&t.Key, &t.UserID, &t.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token for user %d: %w", userID, err)
	}
	return t, nil
}

// GetTokenByKey resolves a presented key, or ErrNotFound.
func (db *DB) GetTokenByKey(ctx context.Context, key string) (*models.Token, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	t := &models.Token{}
	err := db.run().queryRow(ctx, `SELECT token_key, user_id, created FROM tokens WHERE token_key = ?`, key).
		Scan(&t.Key, &t.UserID, &t.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return t, nil
}

// InsertToken stores t. ErrDuplicate means the user already has a token
// or the key collided.
func (db *DB) InsertToken(ctx context.Context, t *models.Token) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if t.Created.IsZero() {
		t.Created = db.now()
	}
	return db.withTx(ctx, func(r runner) error {
		taken, err := r.exists(ctx, `SELECT 1 FROM tokens WHERE user_id = ? OR token_key = ?`, t.UserID, t.Key)
		if err != nil {
			return fmt.Errorf("failed to check token: %w", err)
		}
		if taken {
			return ErrDuplicate
		}
		if _, err := r.exec(ctx, `INSERT INTO tokens (user_id, token_key, created) VALUES (?, ?, ?)`,
			t.UserID, t.Key, t.Created); err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert token: %w", err)
		}
		return nil
	})
}

// DeleteToken revokes the user's token. ErrNotFound when there was none.
func (db *DB) DeleteToken(ctx context.Context, userID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.run().execAffecting(ctx, `DELETE FROM tokens WHERE user_id = ?`, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete token for user %d: %w", userID, err)
	}
	return err
}
