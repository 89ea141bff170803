// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package validation checks records before they are persisted.
//
// Two layers are provided.
//
// # Request structs
//
// ValidateStruct runs go-playground/validator v10 tags on transport-level
// request structs through a thread-safe singleton. Field names in errors are
// taken from json tags:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondValidationError(w, verr.FieldErrors())
//	    return
//	}
//
// # Entity rules
//
// A Registry maps an entity Kind to a normalizer and an ordered list of
// Rules. Validate trims the record in place, runs every rule to completion
// and returns all failing fields together:
//
//	reg := validation.NewDefaultRegistry(db)
//	fe, err := reg.Validate(ctx, validation.KindBook, book)
//	if err != nil {
//	    // a rule could not run (e.g. the e-mail lookup failed)
//	}
//	if len(fe) > 0 {
//	    // 400 with fe as details
//	}
//
// Date-dependent rules (publication year, birth date) read the registry
// clock, which tests replace with WithClock. The e-mail uniqueness rule uses
// an EmailLookup supplied by the caller.
//
// # Passwords
//
// PasswordPolicy implements the usual minimum-length, numeric-only,
// common-password and username-similarity checks. DefaultPasswordPolicy is
// applied to signups; AdminPasswordPolicy to staff accounts.
package validation
