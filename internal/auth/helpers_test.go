// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
)

// hashForTest hashes with bcrypt.MinCost. Tests check hashing logic, not
// brute-force resistance, and cost 12 would slow the suite down ~100x.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

// fakeUsers is an in-memory UserLookup and CredentialStore.
type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]*models.User
	err   error
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

// setRole replaces the user's profile role, as a profile update would.
func (f *fakeUsers) setRole(id int64, role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Profile = &models.Profile{UserID: id, Role: role}
}

// memoryTokenStore is an in-memory TokenStore.
type memoryTokenStore struct {
	mu     sync.Mutex
	byKey  map[string]*models.Token
	byUser map[int64]string
	err    error
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{
		byKey:  make(map[string]*models.Token),
		byUser: make(map[int64]string),
	}
}

func (s *memoryTokenStore) GetByKey(_ context.Context, key string) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.byKey[key]
	if !ok {
		return nil, ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memoryTokenStore) GetByUser(_ context.Context, userID int64) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	key, ok := s.byUser[userID]
	if !ok {
		return nil, ErrTokenNotFound
	}
	cp := *s.byKey[key]
	return &cp, nil
}

func (s *memoryTokenStore) Create(_ context.Context, t *models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.byUser[t.UserID]; ok {
		return ErrTokenExists
	}
	if _, ok := s.byKey[t.Key]; ok {
		return ErrTokenExists
	}
	cp := *t
	s.byKey[t.Key] = &cp
	s.byUser[t.UserID] = t.Key
	return nil
}

func (s *memoryTokenStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.byUser[userID]
	if !ok {
		return ErrTokenNotFound
	}
	delete(s.byKey, key)
	delete(s.byUser, userID)
	return nil
}

// testUser builds an active user with a MinCost password hash.
func testUser(id int64, username, password, role string) *models.User {
	u := &models.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashForTest(password),
		IsActive:     true,
	}
	if role != "" {
		u.Profile = &models.Profile{UserID: id, Role: role}
	}
	return u
}
