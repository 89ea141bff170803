// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"sync"
	"time"
)

// policyCache memoizes (subject, object, action) policy lookups. Subjects
// are policy subjects such as "owner" or "Librarian", never user ids, so
// entries stay valid across role changes.
type policyCache struct {
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	items    map[string]cacheItem
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	allowed   bool
	expiresAt time.Time
}

func newPolicyCache(ttl time.Duration) *policyCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &policyCache{
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]cacheItem),
		stopChan: make(chan struct{}),
	}
	go c.janitor()
	return c
}

// key joins with '|' because objects such as dashboard:admin contain ':'.
func (c *policyCache) key(subject, object, action string) string {
	return subject + "|" + object + "|" + action
}

func (c *policyCache) get(subject, object, action string) (allowed, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[c.key(subject, object, action)]
	if !found || c.now().After(item.expiresAt) {
		return false, false
	}
	return item.allowed, true
}

func (c *policyCache) set(subject, object, action string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[c.key(subject, object, action)] = cacheItem{
		allowed:   allowed,
		expiresAt: c.now().Add(c.ttl),
	}
	UpdateAuthzCacheSize(len(c.items))
}

func (c *policyCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
	UpdateAuthzCacheSize(0)
}

func (c *policyCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// sweep drops expired entries.
func (c *policyCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			RecordAuthzCacheEviction()
		}
	}
	UpdateAuthzCacheSize(len(c.items))
}

func (c *policyCache) janitor() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// stop is idempotent.
func (c *policyCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}
