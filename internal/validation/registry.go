// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/shelfwise/internal/metrics"
)

// Kind names the entity a record belongs to.
type Kind string

const (
	KindBook       Kind = "book"
	KindBookForm   Kind = "book_form"
	KindAuthor     Kind = "author"
	KindAuthorForm Kind = "author_form"
	KindComment    Kind = "comment"
	KindPost       Kind = "post"
	KindUser       Kind = "user"
	KindProfile    Kind = "profile"
	KindLibrary    Kind = "library"
	KindLibrarian  Kind = "librarian"
	KindTag        Kind = "tag"
)

// ErrUnknownKind is returned by Validate for a kind nothing was registered for.
var ErrUnknownKind = errors.New("no validators registered for kind")

// FieldErrors maps a field name to every message raised against it.
type FieldErrors map[string][]string

// Add appends msg to field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Merge appends every message of other.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		fe[field] = append(fe[field], msgs...)
	}
}

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, field := range fe.Fields() {
		parts = append(parts, field+": "+strings.Join(fe[field], " "))
	}
	return strings.Join(parts, "; ")
}

// Rule inspects a record and returns the field messages it raises. A non-nil
// error means the rule could not run (for example a failed lookup); it does
// not stop the remaining rules.
type Rule func(ctx context.Context, record any) (FieldErrors, error)

// Normalizer rewrites a record in place before any rule sees it.
type Normalizer func(record any)

type kindRules struct {
	normalize Normalizer
	rules     []Rule
}

// Registry holds the ordered rules for each entity kind. It is safe for
// concurrent use; registration normally happens once at startup.
type Registry struct {
	mu        sync.RWMutex
	kinds     map[Kind]*kindRules
	now       func() time.Time
	passwords PasswordPolicy
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source used by date-dependent rules.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithPasswordPolicy sets the policy applied to passwords on user records.
func WithPasswordPolicy(p PasswordPolicy) Option {
	return func(r *Registry) {
		r.passwords = p
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		kinds:     make(map[Kind]*kindRules),
		now:       time.Now,
		passwords: DefaultPasswordPolicy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the registry clock's current time.
func (r *Registry) Now() time.Time {
	return r.now()
}

// Register appends rules for kind.
func (r *Registry) Register(kind Kind, rules ...Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kr := r.kindLocked(kind)
	kr.rules = append(kr.rules, rules...)
}

// SetNormalizer installs the normalizer for kind, replacing any previous one.
func (r *Registry) SetNormalizer(kind Kind, fn Normalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kindLocked(kind).normalize = fn
}

func (r *Registry) kindLocked(kind Kind) *kindRules {
	kr, ok := r.kinds[kind]
	if !ok {
		kr = &kindRules{}
		r.kinds[kind] = kr
	}
	return kr
}

// Validate normalizes record and runs every rule for kind. All rules run
// even after one fails, so the result lists every failing field. The
// returned FieldErrors is nil when the record is valid. A non-nil error
// reports rules that could not run; field errors found by the others are
// still returned alongside it.
func (r *Registry) Validate(ctx context.Context, kind Kind, record any) (FieldErrors, error) {
	r.mu.RLock()
	kr, ok := r.kinds[kind]
	var normalize Normalizer
	var rules []Rule
	if ok {
		normalize = kr.normalize
		rules = append(rules, kr.rules...)
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if normalize != nil {
		normalize(record)
	}

	var (
		fieldErrs FieldErrors
		ruleErrs  []error
	)
	for _, rule := range rules {
		fe, err := rule(ctx, record)
		if err != nil {
			ruleErrs = append(ruleErrs, err)
		}
		if len(fe) == 0 {
			continue
		}
		if fieldErrs == nil {
			fieldErrs = FieldErrors{}
		}
		fieldErrs.Merge(fe)
	}

	for _, field := range fieldErrs.Fields() {
		metrics.RecordValidationFailure(string(kind), field)
	}

	if len(ruleErrs) > 0 {
		return fieldErrs, fmt.Errorf("validating %s: %w", kind, errors.Join(ruleErrs...))
	}
	return fieldErrs, nil
}

// single builds a one-entry FieldErrors.
func single(field, msg string) FieldErrors {
	return FieldErrors{field: {msg}}
}
