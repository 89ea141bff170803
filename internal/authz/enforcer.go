// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath is the path to the Casbin model file.
	// If empty, uses embedded model.
	ModelPath string

	// PolicyPath is the path to the Casbin policy file.
	// If empty, uses embedded policy.
	PolicyPath string

	// AutoReload asks the caller to schedule Reload every ReloadInterval.
	AutoReload bool

	// ReloadInterval is how often to reload the policy file.
	ReloadInterval time.Duration

	// CacheEnabled enables policy decision caching.
	CacheEnabled bool

	// CacheTTL is how long to cache decisions.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns the embedded policy with caching on.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		ReloadInterval: 30 * time.Second,
		CacheEnabled:   true,
		CacheTTL:       5 * time.Minute,
	}
}

// EnforcerConfigFrom maps the application config onto EnforcerConfig.
func EnforcerConfigFrom(cfg *config.CasbinConfig) *EnforcerConfig {
	return &EnforcerConfig{
		ModelPath:      cfg.ModelPath,
		PolicyPath:     cfg.PolicyPath,
		AutoReload:     cfg.AutoReload,
		ReloadInterval: cfg.ReloadInterval,
		CacheEnabled:   cfg.CacheEnabled,
		CacheTTL:       cfg.CacheTTL,
	}
}

// Enforcer wraps the Casbin enforcer with a decision cache.
type Enforcer struct {
	config   *EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *policyCache
}

// NewEnforcer creates a new authorization enforcer.
func NewEnforcer(ctx context.Context, cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	var m model.Model
	var err error

	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{
		config:   cfg,
		enforcer: enforcer,
	}
	if cfg.CacheEnabled {
		e.cache = newPolicyCache(cfg.CacheTTL)
	}
	e.updateStats()

	logging.Ctx(ctx).Info().
		Str("policy", policySource(cfg.PolicyPath)).
		Int("rules", len(e.GetPolicy())).
		Bool("cache", cfg.CacheEnabled).
		Msg("Authorization policy loaded")

	return e, nil
}

// loadEmbeddedPolicy parses and loads a policy in Casbin CSV form.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		ptype, rule := parts[0], parts[1:]
		switch ptype {
		case "p":
			if len(rule) < 3 {
				return fmt.Errorf("policy line %q: want p, sub, obj, act", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("policy line %q: unknown type %q", line, ptype)
		}
	}
	return nil
}

// Enforce checks if the subject can perform the action on the object.
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	if e.cache != nil {
		if allowed, ok := e.cache.get(subject, object, action); ok {
			RecordAuthzCacheHit()
			return allowed, nil
		}
		RecordAuthzCacheMiss()
	}

	AuthzPolicyEvaluationsTotal.Inc()
	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		RecordAuthzError("enforcer_error")
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.set(subject, object, action, allowed)
	}
	return allowed, nil
}

// EnforceAny reports whether any of subjects may perform action on object.
func (e *Enforcer) EnforceAny(subjects []string, object, action string) (bool, error) {
	for _, subject := range subjects {
		allowed, err := e.Enforce(subject, object, action)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// AddPolicy adds a new policy rule.
func (e *Enforcer) AddPolicy(subject, object, action string) (bool, error) {
	added, err := e.enforcer.AddPolicy(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("failed to add policy: %w", err)
	}
	e.invalidate("policy_added")
	return added, nil
}

// RemovePolicy removes a policy rule.
func (e *Enforcer) RemovePolicy(subject, object, action string) (bool, error) {
	removed, err := e.enforcer.RemovePolicy(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("failed to remove policy: %w", err)
	}
	e.invalidate("policy_removed")
	return removed, nil
}

// ErrNoAdapter is returned when LoadPolicy is called but no file adapter
// is configured.
var ErrNoAdapter = errors.New("no policy adapter configured; using embedded policy")

// LoadPolicy reloads the policy from PolicyPath.
func (e *Enforcer) LoadPolicy() error {
	if e.config.PolicyPath == "" {
		return ErrNoAdapter
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		RecordPolicyReload(false)
		return err
	}
	RecordPolicyReload(true)
	e.invalidate("policy_reload")
	return nil
}

// GetPolicy returns all policy rules.
func (e *Enforcer) GetPolicy() [][]string {
	//nolint:errcheck // GetPolicy only fails if enforcer is nil, which is a programming error
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

// GetGroupingPolicy returns all subject inheritance rules.
func (e *Enforcer) GetGroupingPolicy() [][]string {
	//nolint:errcheck // GetGroupingPolicy only fails if enforcer is nil, which is a programming error
	policies, _ := e.enforcer.GetGroupingPolicy()
	return policies
}

// ReloadEnabled reports whether a file policy should be reloaded on an
// interval.
func (e *Enforcer) ReloadEnabled() bool {
	return e.config.AutoReload && e.config.PolicyPath != ""
}

// ReloadInterval is the configured reload period, 30s when unset.
func (e *Enforcer) ReloadInterval() time.Duration {
	if e.config.ReloadInterval <= 0 {
		return 30 * time.Second
	}
	return e.config.ReloadInterval
}

// Reload reloads the file policy and clears cached decisions. It matches
// the task signature of the supervisor's periodic service.
func (e *Enforcer) Reload(_ context.Context) error {
	return e.LoadPolicy()
}

// Close stops the cache janitor.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.stop()
	}
}

func (e *Enforcer) invalidate(reason string) {
	if e.cache != nil {
		e.cache.clear()
		RecordAuthzCacheInvalidation(reason)
	}
	e.updateStats()
}

func (e *Enforcer) updateStats() {
	UpdatePolicyStats(len(e.GetPolicy()), len(e.GetGroupingPolicy()))
}

func policySource(path string) string {
	if path != "" && fileExists(path) {
		return path
	}
	return "embedded"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
