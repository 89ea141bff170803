// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfwise/cmd/shelfctl/output"
	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
)

type issuedToken struct {
	Username string    `json:"username"`
	Token    string    `json:"token"`
	Created  time.Time `json:"created"`
	New      bool      `json:"new"`
}

func (c *cli) newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
		Long: `Manage opaque API tokens in the configured token backend.

The badger backend holds a directory lock; stop the server before using
these commands against it.

Subcommands:
  issue   - Print a user's token, creating one if needed
  revoke  - Delete a user's token`,
	}
	cmd.AddCommand(c.newTokenIssueCmd(), c.newTokenRevokeCmd())
	return cmd
}

func (c *cli) newTokenIssueCmd() *cobra.Command {
	var rotate bool

	cmd := &cobra.Command{
		Use:   "issue USERNAME",
		Short: "Print a user's API token",
		Long: `Print a user's API token, creating one if the user has none.

Examples:
  shelfctl token issue alice
  shelfctl token issue alice --rotate   # Replace the existing token`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTokens(cmd.Context(), args[0], func(ctx context.Context, tokens *auth.TokenManager, u *models.User) error {
				var (
					tok     *models.Token
					created bool
					err     error
				)
				if rotate {
					tok, err = tokens.Rotate(ctx, u.ID)
					created = true
				} else {
					tok, created, err = tokens.GetOrCreate(ctx, u.ID)
				}
				if err != nil {
					return err
				}

				res := issuedToken{Username: u.Username, Token: tok.Key, Created: tok.Created, New: created}
				return c.emit(cmd, res, func(w io.Writer) {
					if created {
						output.Success(w, "Issued token for %s", u.Username)
					} else {
						output.Muted(w, "Existing token for %s", u.Username)
					}
					fmt.Fprintln(w, tok.Key)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&rotate, "rotate", false, "Revoke the existing token and issue a new one")
	return cmd
}

func (c *cli) newTokenRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke USERNAME",
		Short: "Delete a user's API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTokens(cmd.Context(), args[0], func(ctx context.Context, tokens *auth.TokenManager, u *models.User) error {
				if err := tokens.Revoke(ctx, u.ID); err != nil {
					return err
				}
				return c.emit(cmd, map[string]interface{}{"username": u.Username, "revoked": true}, func(w io.Writer) {
					output.Success(w, "Revoked token for %s", u.Username)
				})
			})
		},
	}
}

// withTokens opens the database and the configured token backend, looks up
// username and calls fn.
func (c *cli) withTokens(ctx context.Context, username string, fn func(context.Context, *auth.TokenManager, *models.User) error) error {
	cfg, db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("no user named %q", username)
		}
		return err
	}

	store, closeStore, err := openTokenStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(ctx, auth.NewTokenManager(store, cfg.Tokens.Backend), u)
}

func openTokenStore(cfg *config.Config, db *database.DB) (auth.TokenStore, func(), error) {
	if cfg.Tokens.Backend != config.TokenBackendBadger {
		return auth.NewDatabaseTokenStore(db), func() {}, nil
	}
	store, err := auth.OpenBadgerTokenStore(cfg.Tokens.BadgerPath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
