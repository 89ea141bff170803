// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfwise/cmd/shelfctl/output"
	"github.com/tomtom215/shelfwise/internal/database"
)

// migrationRow is the JSON shape of one applied migration.
type migrationRow struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AppliedAt   time.Time `json:"applied_at"`
}

type migrateResult struct {
	Driver     string         `json:"driver"`
	Version    int            `json:"version"`
	Migrations []migrationRow `json:"migrations,omitempty"`
}

func (c *cli) newMigrateCmd() *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply pending schema migrations and report the schema version.

Examples:
  shelfctl migrate                  # Apply pending migrations
  shelfctl migrate --history        # Also list applied migrations
  shelfctl migrate --history --json # Output in JSON format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := c.open()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			res := migrateResult{Driver: cfg.Database.Driver}
			if res.Version, err = db.GetCurrentSchemaVersion(ctx); err != nil {
				return err
			}
			if history {
				applied, err := db.GetMigrationHistory(ctx)
				if err != nil {
					return err
				}
				res.Migrations = migrationRows(applied)
			}

			return c.emit(cmd, res, func(w io.Writer) {
				output.Success(w, "Schema is at version %d (%s)", res.Version, res.Driver)
				if history {
					printMigrations(w, res.Migrations)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "List applied migrations")
	return cmd
}

func migrationRows(applied []database.Migration) []migrationRow {
	rows := make([]migrationRow, 0, len(applied))
	for _, m := range applied {
		rows = append(rows, migrationRow{
			Version:     m.Version,
			Name:        m.Name,
			Description: m.Description,
			AppliedAt:   m.AppliedAt,
		})
	}
	return rows
}

func printMigrations(w io.Writer, rows []migrationRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
	for _, m := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", m.Version, m.Name, m.AppliedAt.Format(time.RFC3339))
	}
	tw.Flush()
}
