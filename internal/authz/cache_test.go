// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"sync"
	"testing"
	"time"
)

func TestNewPolicyCache_TTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"positive", time.Minute, time.Minute},
		{"zero uses default", 0, 5 * time.Minute},
		{"negative uses default", -time.Second, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newPolicyCache(tt.ttl)
			defer cache.stop()

			if cache.ttl != tt.want {
				t.Errorf("ttl = %v, want %v", cache.ttl, tt.want)
			}
		})
	}
}

func TestPolicyCache_KeyKeepsColons(t *testing.T) {
	cache := newPolicyCache(time.Minute)
	defer cache.stop()

	if a, b := cache.key("Admin", "dashboard:admin", "view"), cache.key("Admin:dashboard", "admin", "view"); a == b {
		t.Errorf("keys collide: %q", a)
	}
}

func TestPolicyCache_SetGet(t *testing.T) {
	cache := newPolicyCache(time.Minute)
	defer cache.stop()

	if _, ok := cache.get("owner", "post", "update"); ok {
		t.Fatal("empty cache reported a hit")
	}

	cache.set("owner", "post", "update", true)
	cache.set("Member", "post", "delete", false)

	if allowed, ok := cache.get("owner", "post", "update"); !ok || !allowed {
		t.Errorf("get(owner) = %v, %v", allowed, ok)
	}
	if allowed, ok := cache.get("Member", "post", "delete"); !ok || allowed {
		t.Errorf("get(Member) = %v, %v", allowed, ok)
	}
	if cache.size() != 2 {
		t.Errorf("size() = %d, want 2", cache.size())
	}
}

func TestPolicyCache_Expiry(t *testing.T) {
	cache := newPolicyCache(time.Minute)
	defer cache.stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.set("staff", "book", "delete", true)
	now = now.Add(2 * time.Minute)

	if _, ok := cache.get("staff", "book", "delete"); ok {
		t.Error("expired entry returned")
	}

	cache.sweep()
	if cache.size() != 0 {
		t.Errorf("size() after sweep = %d, want 0", cache.size())
	}
}

func TestPolicyCache_Clear(t *testing.T) {
	cache := newPolicyCache(time.Minute)
	defer cache.stop()

	cache.set("anonymous", "book", "read", true)
	cache.clear()

	if _, ok := cache.get("anonymous", "book", "read"); ok {
		t.Error("entry survived clear")
	}
}

func TestPolicyCache_StopIdempotent(t *testing.T) {
	cache := newPolicyCache(time.Minute)
	cache.stop()
	cache.stop()
}

func TestPolicyCache_Concurrent(t *testing.T) {
	cache := newPolicyCache(time.Minute)
	defer cache.stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.set("Member", "book", "read", i%2 == 0)
				cache.get("Member", "book", "read")
				if j%25 == 0 {
					cache.clear()
				}
			}
		}(i)
	}
	wg.Wait()
}
