// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package commands implements the shelfctl command tree.
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomtom215/shelfwise/cmd/shelfctl/output"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/validation"
)

const version = "1.0.0"

// Env is what the commands need from outside the process.
type Env struct {
	// LoadConfig returns the server configuration.
	LoadConfig func() (*config.Config, error)

	// ReadPassword prompts for a password without echo.
	ReadPassword func(prompt string) (string, error)
}

// DefaultEnv loads configuration the way the server does and prompts on
// the controlling terminal.
func DefaultEnv() Env {
	return Env{
		LoadConfig:   config.Load,
		ReadPassword: readPassword,
	}
}

type globalFlags struct {
	dbDriver   string
	dbPath     string
	jsonOutput bool
	verbose    bool
}

type cli struct {
	env   Env
	flags globalFlags
}

// NewRootCmd builds the shelfctl command tree around env.
func NewRootCmd(env Env) *cobra.Command {
	c := &cli{env: env}

	root := &cobra.Command{
		Use:   "shelfctl",
		Short: "Shelfwise administration tool",
		Long: `shelfctl administers a Shelfwise database using the server's configuration
(config.yaml, CONFIG_PATH and environment variables).

Commands:
  migrate   - Apply schema migrations and show history
  user      - Create users and change roles
  token     - Issue or rotate API tokens
  book      - Add books to the catalog
  seed      - Load the demo catalog`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if c.flags.verbose {
				level = "debug"
			}
			logging.Init(logging.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.dbDriver, "db-driver", "", "Database driver override (duckdb, sqlite3, pgx)")
	pf.StringVar(&c.flags.dbPath, "db", "", "Database path or connection URL override")
	pf.BoolVar(&c.flags.jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(
		c.newMigrateCmd(),
		c.newUserCmd(),
		c.newTokenCmd(),
		c.newBookCmd(),
		c.newSeedCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(DefaultEnv()).Execute(); err != nil {
		output.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

// config loads the configuration and applies the global overrides.
func (c *cli) config() (*config.Config, error) {
	cfg, err := c.env.LoadConfig()
	if err != nil {
		return nil, err
	}
	if c.flags.dbDriver != "" {
		cfg.Database.Driver = c.flags.dbDriver
	}
	if c.flags.dbPath != "" {
		cfg.Database.Path = c.flags.dbPath
	}
	return cfg, nil
}

// open loads the configuration and opens the migrated database.
func (c *cli) open() (*config.Config, *database.DB, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// emit writes v as JSON under --json, otherwise calls text.
func (c *cli) emit(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	if c.flags.jsonOutput {
		return output.JSON(cmd.OutOrStdout(), v)
	}
	text(cmd.OutOrStdout())
	return nil
}

// invalid turns field errors from the registry into a command error.
func invalid(fe validation.FieldErrors, err error) error {
	if err != nil {
		return err
	}
	if len(fe) > 0 {
		return fmt.Errorf("validation failed: %s", fe.Error())
	}
	return nil
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

// readPasswordLine reads the first line of r.
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}
