// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package auth

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
)

// MultiAuthenticator tries multiple authenticators in priority order.
// Each scheme inspects only its own Authorization prefix, so at most one
// of them finds credentials on a given request.
//
// Error handling:
//   - ErrNoCredentials: Try next authenticator (no credentials for this scheme)
//   - ErrInvalidCredentials, ErrExpiredCredentials: Stop, the request is rejected
//   - ErrAuthenticatorUnavailable and other errors: Stop, the store failed
type MultiAuthenticator struct {
	mu             sync.RWMutex
	authenticators []Authenticator
}

// NewMultiAuthenticator creates a new multi-authenticator with the given authenticators.
// Authenticators are sorted by priority (lower priority number = higher priority).
func NewMultiAuthenticator(authenticators ...Authenticator) *MultiAuthenticator {
	m := &MultiAuthenticator{
		authenticators: make([]Authenticator, 0, len(authenticators)),
	}

	m.authenticators = append(m.authenticators, authenticators...)

	// Sort by priority
	m.sortByPriority()

	return m
}

// AddAuthenticator adds an authenticator to the chain.
func (m *MultiAuthenticator) AddAuthenticator(auth Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.authenticators = append(m.authenticators, auth)
	m.sortByPriority()
}

// Authenticators returns the list of authenticators in priority order.
func (m *MultiAuthenticator) Authenticators() []Authenticator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Authenticator, len(m.authenticators))
	copy(result, m.authenticators)
	return result
}

// Authenticate tries each authenticator in priority order.
func (m *MultiAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error) {
	m.mu.RLock()
	authenticators := make([]Authenticator, len(m.authenticators))
	copy(authenticators, m.authenticators)
	m.mu.RUnlock()

	if len(authenticators) == 0 {
		return nil, ErrNoCredentials
	}

	for _, auth := range authenticators {
		subject, err := auth.Authenticate(ctx, r)
		if err == nil {
			return subject, nil
		}
		if shouldTryNext(err) {
			continue
		}
		return nil, err
	}

	return nil, ErrNoCredentials
}

// Name returns the authenticator name.
func (m *MultiAuthenticator) Name() string {
	return string(AuthModeMulti)
}

// Priority returns the authenticator priority.
// Multi-auth always has highest priority (0) since it wraps other authenticators.
func (m *MultiAuthenticator) Priority() int {
	return 0
}

// shouldTryNext reports whether the next authenticator should be tried.
// A store outage is not skipped: falling through would silently turn a
// credentialed request into an anonymous one.
func shouldTryNext(err error) bool {
	return errors.Is(err, ErrNoCredentials)
}

// sortByPriority sorts authenticators by priority (lower number = higher priority).
// This method assumes the caller holds the write lock.
func (m *MultiAuthenticator) sortByPriority() {
	sort.Slice(m.authenticators, func(i, j int) bool {
		return m.authenticators[i].Priority() < m.authenticators[j].Priority()
	})
}
