// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package testinfra holds container helpers for integration tests.

All files carry the integration build tag, so the package and its Docker
dependency only build with:

	go test -tags integration ./...

Tests skip themselves when no Docker daemon answers:

	func TestPostgres_Something(t *testing.T) {
	    dsn := testinfra.StartPostgres(t)
	    db, err := database.New(&config.DatabaseConfig{Driver: config.DriverPostgres, Path: dsn})
	    ...
	}
*/
package testinfra
