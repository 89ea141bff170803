// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Decision Metrics

	// AuthzDecisionsTotal counts decisions by role, resource kind, action and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "kind", "action", "decision"},
	)

	// AuthzDecisionDuration tracks the latency of a full Decide call.
	AuthzDecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authz_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	// Cache Metrics

	// AuthzCacheHitsTotal counts policy cache hits.
	AuthzCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_cache_hits_total",
			Help: "Total number of authorization cache hits",
		},
	)

	// AuthzCacheMissesTotal counts policy cache misses.
	AuthzCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_cache_misses_total",
			Help: "Total number of authorization cache misses",
		},
	)

	// AuthzCacheEntries tracks the current cache size.
	AuthzCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authz_cache_entries",
			Help: "Current number of entries in the authorization cache",
		},
	)

	// AuthzCacheEvictionsTotal counts expired entries dropped by the janitor.
	AuthzCacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_cache_evictions_total",
			Help: "Total number of authorization cache evictions",
		},
	)

	// AuthzCacheInvalidationsTotal counts full cache clears by reason.
	AuthzCacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_cache_invalidations_total",
			Help: "Total number of authorization cache invalidations",
		},
		[]string{"reason"},
	)

	// Policy Metrics

	// AuthzPolicyEvaluationsTotal counts evaluations that reached Casbin.
	AuthzPolicyEvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_policy_evaluations_total",
			Help: "Total number of Casbin policy evaluations",
		},
	)

	// AuthzPolicyReloadsTotal counts explicit policy reloads.
	AuthzPolicyReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_policy_reloads_total",
			Help: "Total number of policy reloads",
		},
		[]string{"result"},
	)

	// AuthzPolicyRulesTotal tracks the number of p rules loaded.
	AuthzPolicyRulesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authz_policy_rules_total",
			Help: "Current number of policy rules loaded",
		},
	)

	// AuthzGroupingRulesTotal tracks the number of g rules loaded.
	AuthzGroupingRulesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authz_grouping_rules_total",
			Help: "Current number of grouping rules",
		},
	)

	// AuthzErrorsTotal counts enforcement errors, not denials.
	AuthzErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_errors_total",
			Help: "Total number of authorization errors",
		},
		[]string{"error_type"},
	)
)

// RecordAuthzDecision records one Decide outcome.
func RecordAuthzDecision(role, kind, action string, decision Decision, duration time.Duration) {
	if role == "" {
		role = "anonymous"
	}
	AuthzDecisionsTotal.WithLabelValues(role, kind, action, decision.String()).Inc()
	AuthzDecisionDuration.Observe(duration.Seconds())
}

// RecordAuthzCacheHit records a cache hit.
func RecordAuthzCacheHit() {
	AuthzCacheHitsTotal.Inc()
}

// RecordAuthzCacheMiss records a cache miss.
func RecordAuthzCacheMiss() {
	AuthzCacheMissesTotal.Inc()
}

// RecordAuthzCacheEviction records a cache eviction.
func RecordAuthzCacheEviction() {
	AuthzCacheEvictionsTotal.Inc()
}

// RecordAuthzCacheInvalidation records a full cache clear.
func RecordAuthzCacheInvalidation(reason string) {
	AuthzCacheInvalidationsTotal.WithLabelValues(reason).Inc()
}

// UpdateAuthzCacheSize sets the cache size gauge.
func UpdateAuthzCacheSize(size int) {
	AuthzCacheEntries.Set(float64(size))
}

// RecordPolicyReload records a policy reload attempt.
func RecordPolicyReload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthzPolicyReloadsTotal.WithLabelValues(result).Inc()
}

// UpdatePolicyStats sets the rule count gauges.
func UpdatePolicyStats(policyRules, groupingRules int) {
	AuthzPolicyRulesTotal.Set(float64(policyRules))
	AuthzGroupingRulesTotal.Set(float64(groupingRules))
}

// RecordAuthzError records an enforcement error.
func RecordAuthzError(errorType string) {
	AuthzErrorsTotal.WithLabelValues(errorType).Inc()
}
