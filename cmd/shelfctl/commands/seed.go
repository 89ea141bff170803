// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfwise/cmd/shelfctl/output"
	"github.com/tomtom215/shelfwise/internal/database"
)

func (c *cli) newSeedCmd() *cobra.Command {
	var postAuthor string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog",
		Long: `Load a few authors and books, a library with its librarian and,
with --post-author, a welcome post. Nothing is written when the catalog
already has authors.

Examples:
  shelfctl seed
  shelfctl seed --post-author root`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := c.open()
			if err != nil {
				return err
			}
			defer db.Close()
			ctx := cmd.Context()

			var authorID int64
			if postAuthor != "" {
				u, err := db.GetUserByUsername(ctx, postAuthor)
				if err != nil {
					if errors.Is(err, database.ErrNotFound) {
						return fmt.Errorf("no user named %q", postAuthor)
					}
					return err
				}
				authorID = u.ID
			}

			res, err := db.SeedDemoData(ctx, authorID)
			if err != nil {
				return err
			}
			return c.emit(cmd, res, func(w io.Writer) {
				if res.Skipped {
					output.Warning(w, "Catalog is not empty; demo data skipped")
					return
				}
				output.Success(w, "Seeded %d authors and %d books into library %d", res.Authors, res.Books, res.LibraryID)
				if res.PostID != 0 {
					output.Muted(w, "Welcome post %d", res.PostID)
				}
			})
		},
	}
	cmd.Flags().StringVar(&postAuthor, "post-author", "", "Username that writes the welcome post")
	return cmd
}
