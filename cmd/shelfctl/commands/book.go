// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfwise/cmd/shelfctl/output"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/validation"
)

func (c *cli) newBookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the book catalog",
		Long: `Manage the book catalog.

Subcommands:
  add   - Add a book, creating its author by name if needed
  list  - List books`,
	}
	cmd.AddCommand(c.newBookAddCmd(), c.newBookListCmd())
	return cmd
}

type bookAddFlags struct {
	title  string
	author string
	year   int
	owner  string
}

func (c *cli) newBookAddCmd() *cobra.Command {
	var f bookAddFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Long: `Add a book. The author is matched by name, ignoring case, and created
when no author has that name. The year may not be in the future.

Examples:
  shelfctl book add --title "Dune" --author "Frank Herbert" --year 1965
  shelfctl book add --title "Emma" --author "Jane Austen" --year 1915 --owner alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBookAdd(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "Book title (required)")
	fl.StringVar(&f.author, "author", "", "Author name (required)")
	fl.IntVar(&f.year, "year", 0, "Publication year (required)")
	fl.StringVar(&f.owner, "owner", "", "Username recorded as the book's owner")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (c *cli) runBookAdd(cmd *cobra.Command, f bookAddFlags) error {
	_, db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := cmd.Context()

	registry := validation.NewDefaultRegistry(db)
	form := &validation.BookForm{Title: f.title, AuthorName: f.author, PublicationYear: f.year}
	if err := invalid(registry.Validate(ctx, validation.KindBookForm, form)); err != nil {
		return err
	}

	var owner *int64
	if f.owner != "" {
		u, err := db.GetUserByUsername(ctx, f.owner)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no user named %q", f.owner)
			}
			return err
		}
		owner = &u.ID
	}

	author, err := db.FindAuthorByName(ctx, form.AuthorName)
	switch {
	case errors.Is(err, database.ErrNotFound):
		authorForm := &validation.AuthorForm{Name: form.AuthorName}
		if err := invalid(registry.Validate(ctx, validation.KindAuthorForm, authorForm)); err != nil {
			return err
		}
		author = &models.Author{Name: authorForm.Name, CreatedBy: owner}
		if err := db.CreateAuthor(ctx, author); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	book := &models.Book{
		Title:           form.Title,
		PublicationYear: form.PublicationYear,
		AuthorID:        author.ID,
		Owner:           owner,
	}
	if err := db.CreateBook(ctx, book); err != nil {
		return err
	}

	return c.emit(cmd, book, func(w io.Writer) {
		output.Success(w, "Added %q by %s (%d) as book %d", book.Title, author.Name, book.PublicationYear, book.ID)
	})
}

func (c *cli) newBookListCmd() *cobra.Command {
	var (
		search   string
		ordering string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := c.open()
			if err != nil {
				return err
			}
			defer db.Close()

			books, err := db.ListBooks(cmd.Context(), models.BookFilter{Search: search, Ordering: ordering})
			if err != nil {
				return err
			}
			return c.emit(cmd, books, func(w io.Writer) {
				if len(books) == 0 {
					output.Muted(w, "No books")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR")
				for _, b := range books {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", b.ID, b.Title, b.AuthorName, b.PublicationYear)
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Search titles and author names")
	cmd.Flags().StringVar(&ordering, "ordering", "", "title, author__name or publication_year, \"-\" for descending")
	return cmd
}
