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
	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

func (c *cli) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and roles",
		Long: `Manage users and roles.

Subcommands:
  create    - Create a user with a profile
  set-role  - Change a user's declared role
  delete    - Delete a user and everything it owns`,
	}
	cmd.AddCommand(c.newUserCreateCmd(), c.newUserSetRoleCmd(), c.newUserDeleteCmd())
	return cmd
}

type userCreateFlags struct {
	email         string
	role          string
	firstName     string
	lastName      string
	staff         bool
	superuser     bool
	passwordStdin bool
}

func (c *cli) newUserCreateCmd() *cobra.Command {
	var f userCreateFlags

	cmd := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a user",
		Long: `Create a user and its profile. The password is prompted for unless
--password-stdin is given. Staff, superusers and Admins must satisfy the
stricter admin password policy.

Examples:
  shelfctl user create alice --email alice@example.com
  shelfctl user create root --superuser --email root@example.com
  echo "$PW" | shelfctl user create carol --role Librarian --password-stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUserCreate(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.email, "email", "", "E-mail address")
	fl.StringVar(&f.role, "role", "", "Role: Admin, Librarian or Member (default Member, Admin with --superuser)")
	fl.StringVar(&f.firstName, "first-name", "", "First name")
	fl.StringVar(&f.lastName, "last-name", "", "Last name")
	fl.BoolVar(&f.staff, "staff", false, "Mark the user as staff")
	fl.BoolVar(&f.superuser, "superuser", false, "Mark the user as superuser")
	fl.BoolVar(&f.passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func (c *cli) runUserCreate(cmd *cobra.Command, username string, f userCreateFlags) error {
	role := models.NormalizeRole(f.role)
	if role == "" {
		role = models.DefaultRole
		if f.superuser {
			role = models.RoleAdmin
		}
	}
	if !models.IsValidRole(role) {
		return fmt.Errorf("invalid role %q (want one of %v)", f.role, models.ValidRoles)
	}

	var (
		password string
		err      error
	)
	if f.passwordStdin {
		password, err = readPasswordLine(cmd.InOrStdin())
	} else {
		password, err = c.env.ReadPassword(fmt.Sprintf("Password for %s: ", username))
	}
	if err != nil {
		return err
	}

	cfg, db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := cmd.Context()

	policy := validation.DefaultPasswordPolicy()
	if f.staff || f.superuser || role == models.RoleAdmin {
		policy = validation.AdminPasswordPolicy()
	}
	registry := validation.NewDefaultRegistry(db, validation.WithPasswordPolicy(policy))
	acct := &validation.Account{Username: username, Email: f.email, Password: password}
	if err := invalid(registry.Validate(ctx, validation.KindUser, acct)); err != nil {
		return err
	}

	hash, err := auth.HashPassword(acct.Password, cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	u := &models.User{
		Username:     acct.Username,
		Email:        acct.Email,
		FirstName:    f.firstName,
		LastName:     f.lastName,
		PasswordHash: hash,
		IsStaff:      f.staff || f.superuser,
		IsSuperuser:  f.superuser,
		IsActive:     true,
	}
	if err := db.CreateUser(ctx, u, role); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("user %q already exists", acct.Username)
		}
		return err
	}

	created, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		return err
	}
	return c.emit(cmd, created, func(w io.Writer) {
		output.Success(w, "Created user %s (id %d, role %s)", created.Username, created.ID, created.Role())
	})
}

type roleChange struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Previous string `json:"previous_role"`
	Role     string `json:"role"`
}

func (c *cli) newUserSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role USERNAME ROLE",
		Short: "Change a user's role",
		Long: `Change the declared role on a user's profile. Role names are
case-insensitive. Changes apply to the user's next request.

Examples:
  shelfctl user set-role carol librarian`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.NormalizeRole(args[1])
			if !models.IsValidRole(role) {
				return fmt.Errorf("invalid role %q (want one of %v)", args[1], models.ValidRoles)
			}

			_, db, err := c.open()
			if err != nil {
				return err
			}
			defer db.Close()
			ctx := cmd.Context()

			u, err := db.GetUserByUsername(ctx, args[0])
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("no user named %q", args[0])
				}
				return err
			}
			previous, err := db.SetUserRole(ctx, u.ID, role)
			if err != nil {
				return err
			}

			change := roleChange{UserID: u.ID, Username: u.Username, Previous: previous, Role: role}
			return c.emit(cmd, change, func(w io.Writer) {
				if previous == role {
					output.Warning(w, "%s already has role %s", u.Username, role)
					return
				}
				output.Success(w, "%s: %s -> %s", u.Username, previous, role)
			})
		},
	}
}

func (c *cli) newUserDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user",
		Long: `Delete a user together with its profile, API token, posts, comments
and owned books. Authors the user created are kept. Requires --yes.

Examples:
  shelfctl user delete mallory --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %q without --yes", args[0])
			}

			cfg, db, err := c.open()
			if err != nil {
				return err
			}
			defer db.Close()
			ctx := cmd.Context()

			u, err := db.GetUserByUsername(ctx, args[0])
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("no user named %q", args[0])
				}
				return err
			}

			// The badger backend keeps tokens outside the database.
			store, closeStore, err := openTokenStore(cfg, db)
			if err != nil {
				return err
			}
			revokeErr := auth.NewTokenManager(store, cfg.Tokens.Backend).Revoke(ctx, u.ID)
			closeStore()
			if revokeErr != nil {
				return fmt.Errorf("failed to revoke token: %w", revokeErr)
			}

			if err := db.DeleteUser(ctx, u.ID); err != nil {
				return err
			}
			return c.emit(cmd, map[string]interface{}{"user_id": u.ID, "username": u.Username, "deleted": true}, func(w io.Writer) {
				output.Success(w, "Deleted user %s", u.Username)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
