// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package auth turns request credentials into a Principal.

Authentication runs in two steps. An Authenticator proves which user sent
the request and yields an AuthSubject; the Resolver then loads that user
and its profile and yields the Principal handlers work with. The role is
read from the profile on every request, so a role change takes effect on
the next call without re-login.

Credential Schemes (tried in priority order by MultiAuthenticator):

  - Token (10): "Authorization: Token <key>", an opaque 40-character hex key,
    one per user, issued by POST /api/v1/auth/token
  - JWT (20): "Authorization: Bearer <jwt>", HS256, issued by POST /api/v1/auth/login
  - Basic (25): HTTP Basic against the bcrypt hash in the user table

A request with no Authorization header is anonymous. A request whose
credentials are wrong or expired is rejected with 401 by Middleware before
any handler runs; it never degrades to anonymous.

Token Storage:

TokenManager sits on a TokenStore. DatabaseTokenStore uses the tokens
table; BadgerTokenStore keeps tokens in BadgerDB under token:<key> with a
token_user:<id> index. GetOrCreate is idempotent per user.

Principal:

  - Anonymous(): the zero Principal
  - IsAdmin(): staff, superuser or the Admin role
  - HasRole(r): exact declared role match, used by the role dashboards
  - Owns(id): ownership check for owner-scoped writes

Usage Example:

	verifier, _ := auth.NewCredentialVerifier(db, cfg.Security.BcryptCost)
	tokens := auth.NewTokenManager(auth.NewDatabaseTokenStore(db), "database")
	jwtManager, _ := auth.NewJWTManager(&cfg.Security)

	chain := auth.NewMultiAuthenticator(
	    auth.NewTokenAuthenticator(tokens),
	    auth.NewJWTAuthenticator(jwtManager),
	    auth.NewBasicAuthenticator(verifier),
	)
	mw, _ := auth.NewMiddleware(&auth.MiddlewareConfig{
	    Authenticator: chain,
	    Resolver:      auth.NewResolver(db),
	})
	router.Use(mw.Authenticate)

	// In a handler
	principal := auth.PrincipalFromContext(r.Context())

Thread Safety:

All types are safe for concurrent use. Nothing in this package caches
identities or roles.
*/
package auth
