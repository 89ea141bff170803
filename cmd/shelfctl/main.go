// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Command shelfctl administers a Shelfwise database: migrations, users,
// roles, API tokens, catalog entries and demo data. It reads the same
// configuration as the server.
package main

import "github.com/tomtom215/shelfwise/cmd/shelfctl/commands"

func main() {
	commands.Execute()
}
