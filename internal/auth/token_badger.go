// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	tokenKeyPrefix     = "token:"
	tokenUserKeyPrefix = "token_user:"
)

// badgerGCRatio is the discard ratio passed to RunValueLogGC.
const badgerGCRatio = 0.5

// badgerToken is the stored form; models.Token hides the key from JSON.
type badgerToken struct {
	Key     string    `json:"key"`
	UserID  int64     `json:"user_id"`
	Created time.Time `json:"created"`
}

// BadgerTokenStore implements TokenStore using BadgerDB for durable storage.
// Each token is written under token:<key> with a token_user:<id> index
// pointing back at the key.
type BadgerTokenStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerTokenStore creates a new BadgerDB-backed token store.
func NewBadgerTokenStore(db *badger.DB) *BadgerTokenStore {
	return &BadgerTokenStore{db: db, now: time.Now}
}

// OpenBadgerTokenStore opens (or creates) the badger directory at path.
// The caller owns the store and must Close it.
func OpenBadgerTokenStore(path string) (*BadgerTokenStore, error) {
	if path == "" {
		return nil, errors.New("badger path is required")
	}
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	logging.Info().Str("path", path).Msg("Badger token store opened")
	return NewBadgerTokenStore(db), nil
}

// RunGC reclaims value-log space until badger reports nothing left to
// rewrite. In-memory stores have no value log and return nil.
func (s *BadgerTokenStore) RunGC() error {
	for {
		err := s.db.RunValueLogGC(badgerGCRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}

// Close closes the underlying badger database.
func (s *BadgerTokenStore) Close() error {
	return s.db.Close()
}

func userIndexKey(userID int64) []byte {
	return []byte(tokenUserKeyPrefix + strconv.FormatInt(userID, 10))
}

// GetByKey retrieves a token by its key.
func (s *BadgerTokenStore) GetByKey(_ context.Context, key string) (*models.Token, error) {
	var tok *models.Token
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		tok, err = readToken(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// GetByUser retrieves the user's token through the user index.
func (s *BadgerTokenStore) GetByUser(_ context.Context, userID int64) (*models.Token, error) {
	var tok *models.Token
	err := s.db.View(func(txn *badger.Txn) error {
		key, err := readUserIndex(txn, userID)
		if err != nil {
			return err
		}
		tok, err = readToken(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// Create stores a new token. Badger transactions are serializable, so two
// concurrent creates for one user cannot both commit.
func (s *BadgerTokenStore) Create(_ context.Context, t *models.Token) error {
	if t.Created.IsZero() {
		t.Created = s.now().UTC()
	}
	data, err := json.Marshal(badgerToken{Key: t.Key, UserID: t.UserID, Created: t.Created})
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userIndexKey(t.UserID)); err == nil {
			return ErrTokenExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user index: %w", err)
		}
		if _, err := txn.Get([]byte(tokenKeyPrefix + t.Key)); err == nil {
			return ErrTokenExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check token key: %w", err)
		}

		if err := txn.Set([]byte(tokenKeyPrefix+t.Key), data); err != nil {
			return fmt.Errorf("set token: %w", err)
		}
		if err := txn.Set(userIndexKey(t.UserID), []byte(t.Key)); err != nil {
			return fmt.Errorf("set user index: %w", err)
		}
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		return ErrTokenExists
	}
	return err
}

// Delete removes the user's token and its index entry.
func (s *BadgerTokenStore) Delete(_ context.Context, userID int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key, err := readUserIndex(txn, userID)
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte(tokenKeyPrefix + key)); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		if err := txn.Delete(userIndexKey(userID)); err != nil {
			return fmt.Errorf("delete user index: %w", err)
		}
		return nil
	})
}

func readUserIndex(txn *badger.Txn, userID int64) (string, error) {
	item, err := txn.Get(userIndexKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user index: %w", err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", fmt.Errorf("read user index: %w", err)
	}
	return string(val), nil
}

func readToken(txn *badger.Txn, key string) (*models.Token, error) {
	item, err := txn.Get([]byte(tokenKeyPrefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	var stored badgerToken
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stored)
	}); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &models.Token{Key: stored.Key, UserID: stored.UserID, Created: stored.Created}, nil
}
