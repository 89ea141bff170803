// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/shelfwise/internal/models"
)

// Messages shared by several rules.
const (
	MsgBlank       = "This field may not be blank."
	MsgRequired    = "This field is required."
	MsgEmailTaken  = "A user with this email already exists."
	MsgEmailFormat = "Enter a valid email address."
)

// Field length limits.
const (
	maxTitleLen    = 200
	maxNameLen     = 100
	maxUsernameLen = 150
	maxTagLen      = 50
	maxBioLen      = 500
	maxLocationLen = 50
	minFormLen     = 2
	minFormYear    = 1900
	maxFormYear    = 2100
)

var errWrongRecord = errors.New("unexpected record type")

// check adapts a pure typed rule to a Rule.
func check[T any](fn func(T) FieldErrors) Rule {
	return func(_ context.Context, record any) (FieldErrors, error) {
		v, ok := record.(T)
		if !ok {
			return nil, fmt.Errorf("%w %T", errWrongRecord, record)
		}
		return fn(v), nil
	}
}

// checkCtx adapts a typed rule that needs a context (and may fail).
func checkCtx[T any](fn func(context.Context, T) (FieldErrors, error)) Rule {
	return func(ctx context.Context, record any) (FieldErrors, error) {
		v, ok := record.(T)
		if !ok {
			return nil, fmt.Errorf("%w %T", errWrongRecord, record)
		}
		return fn(ctx, v)
	}
}

func normalizeAs[T any](fn func(T)) Normalizer {
	return func(record any) {
		if v, ok := record.(T); ok {
			fn(v)
		}
	}
}

func tooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}

func maxLenMsg(limit int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", limit)
}

// nonBlank is the common "name must be present and bounded" rule.
func nonBlank(field, value string, limit int) FieldErrors {
	switch {
	case value == "":
		return single(field, MsgBlank)
	case tooLong(value, limit):
		return single(field, maxLenMsg(limit))
	}
	return nil
}

// futureYearMsg is reported when a publication year is after the current year.
func futureYearMsg(year, current int) string {
	return fmt.Sprintf("Publication year %d cannot be in the future (current year %d).", year, current)
}

// NewDefaultRegistry returns a registry with the rules for every entity
// kind. emails backs the e-mail uniqueness rule; when nil that rule is
// skipped.
func NewDefaultRegistry(emails EmailLookup, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	registerCatalog(r)
	registerBlog(r)
	registerAccounts(r, emails)
	return r
}

func registerCatalog(r *Registry) {
	r.SetNormalizer(KindBook, normalizeAs(func(b *models.Book) {
		b.Title = strings.TrimSpace(b.Title)
	}))
	r.Register(KindBook,
		check(func(b *models.Book) FieldErrors {
			return nonBlank("title", b.Title, maxTitleLen)
		}),
		check(func(b *models.Book) FieldErrors {
			if current := r.Now().Year(); b.PublicationYear > current {
				return single("publication_year", futureYearMsg(b.PublicationYear, current))
			}
			return nil
		}),
		check(func(b *models.Book) FieldErrors {
			if b.AuthorID <= 0 {
				return single("author", MsgRequired)
			}
			return nil
		}),
	)

	r.SetNormalizer(KindBookForm, normalizeAs(func(f *BookForm) {
		f.Title = strings.TrimSpace(f.Title)
		f.AuthorName = strings.TrimSpace(f.AuthorName)
	}))
	r.Register(KindBookForm,
		check(func(f *BookForm) FieldErrors {
			if utf8.RuneCountInString(f.Title) < minFormLen {
				return single("title", "Title must be at least 2 characters")
			}
			if tooLong(f.Title, maxTitleLen) {
				return single("title", maxLenMsg(maxTitleLen))
			}
			return nil
		}),
		check(func(f *BookForm) FieldErrors {
			if utf8.RuneCountInString(f.AuthorName) < minFormLen {
				return single("author", "Author must be at least 2 characters")
			}
			return nil
		}),
		check(func(f *BookForm) FieldErrors {
			fe := FieldErrors{}
			if f.PublicationYear < minFormYear || f.PublicationYear > maxFormYear {
				fe.Add("publication_year", "Publication year must be between 1900 and 2100")
			}
			if current := r.Now().Year(); f.PublicationYear > current {
				fe.Add("publication_year", futureYearMsg(f.PublicationYear, current))
			}
			return fe
		}),
	)

	r.SetNormalizer(KindAuthor, normalizeAs(func(a *models.Author) {
		a.Name = strings.TrimSpace(a.Name)
	}))
	r.Register(KindAuthor, check(func(a *models.Author) FieldErrors {
		return nonBlank("name", a.Name, maxNameLen)
	}))

	r.SetNormalizer(KindAuthorForm, normalizeAs(func(a *AuthorForm) {
		a.Name = strings.TrimSpace(a.Name)
	}))
	r.Register(KindAuthorForm, check(func(a *AuthorForm) FieldErrors {
		if utf8.RuneCountInString(a.Name) < minFormLen {
			return single("name", "Name must be at least 2 characters")
		}
		if tooLong(a.Name, maxNameLen) {
			return single("name", maxLenMsg(maxNameLen))
		}
		return nil
	}))

	r.SetNormalizer(KindLibrary, normalizeAs(func(l *models.Library) {
		l.Name = strings.TrimSpace(l.Name)
	}))
	r.Register(KindLibrary, check(func(l *models.Library) FieldErrors {
		return nonBlank("name", l.Name, maxNameLen)
	}))

	r.SetNormalizer(KindLibrarian, normalizeAs(func(l *models.Librarian) {
		l.Name = strings.TrimSpace(l.Name)
	}))
	r.Register(KindLibrarian, check(func(l *models.Librarian) FieldErrors {
		return nonBlank("name", l.Name, maxNameLen)
	}))
}

// NormalizeTag trims a tag name and lowercases it. Tags are stored in this
// form, so "Go" and "go" name the same tag.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func registerBlog(r *Registry) {
	r.SetNormalizer(KindPost, normalizeAs(func(p *models.Post) {
		p.Title = strings.TrimSpace(p.Title)
		p.Content = strings.TrimSpace(p.Content)
		for i := range p.Tags {
			p.Tags[i] = NormalizeTag(p.Tags[i])
		}
	}))
	r.Register(KindPost,
		check(func(p *models.Post) FieldErrors {
			return nonBlank("title", p.Title, maxTitleLen)
		}),
		check(func(p *models.Post) FieldErrors {
			if p.Content == "" {
				return single("content", MsgBlank)
			}
			return nil
		}),
		checkCtx(func(ctx context.Context, p *models.Post) (FieldErrors, error) {
			fe := FieldErrors{}
			for _, tag := range p.Tags {
				if tag == "" {
					continue
				}
				tagErrs, err := r.Validate(ctx, KindTag, &models.Tag{Name: tag})
				if err != nil {
					return nil, err
				}
				for _, msg := range tagErrs["name"] {
					fe.Add("tags", fmt.Sprintf("Tag %q: %s", tag, msg))
				}
			}
			return fe, nil
		}),
	)

	r.SetNormalizer(KindComment, normalizeAs(func(c *models.Comment) {
		c.Content = strings.TrimSpace(c.Content)
	}))
	r.Register(KindComment, check(func(c *models.Comment) FieldErrors {
		if c.Content == "" {
			return single("content", MsgBlank)
		}
		return nil
	}))

	r.SetNormalizer(KindTag, normalizeAs(func(t *models.Tag) {
		t.Name = NormalizeTag(t.Name)
	}))
	r.Register(KindTag, check(func(t *models.Tag) FieldErrors {
		return nonBlank("name", t.Name, maxTagLen)
	}))
}

func registerAccounts(r *Registry, emails EmailLookup) {
	r.SetNormalizer(KindUser, normalizeAs(func(a *Account) {
		a.Username = strings.TrimSpace(a.Username)
		a.Email = strings.TrimSpace(a.Email)
	}))
	r.Register(KindUser,
		check(func(a *Account) FieldErrors {
			return nonBlank("username", a.Username, maxUsernameLen)
		}),
		check(func(a *Account) FieldErrors {
			switch {
			case a.Email == "" && a.EmailRequired:
				return single("email", MsgRequired)
			case a.Email != "" && !IsEmail(a.Email):
				return single("email", MsgEmailFormat)
			}
			return nil
		}),
		checkCtx(func(ctx context.Context, a *Account) (FieldErrors, error) {
			if emails == nil || a.Email == "" || !IsEmail(a.Email) {
				return nil, nil
			}
			taken, err := emails.EmailInUse(ctx, a.Email, a.UserID)
			if err != nil {
				return nil, fmt.Errorf("email lookup: %w", err)
			}
			if taken {
				return single("email", MsgEmailTaken), nil
			}
			return nil, nil
		}),
		check(func(a *Account) FieldErrors {
			if a.Password == "" {
				return nil
			}
			msgs := r.passwords.Check(a.Password, a.Username)
			if len(msgs) == 0 {
				return nil
			}
			return FieldErrors{"password": msgs}
		}),
	)

	r.SetNormalizer(KindProfile, normalizeAs(func(p *models.Profile) {
		p.Bio = strings.TrimSpace(p.Bio)
		p.Location = strings.TrimSpace(p.Location)
		if p.Role != "" {
			p.Role = models.NormalizeRole(p.Role)
		}
	}))
	r.Register(KindProfile,
		check(func(p *models.Profile) FieldErrors {
			if tooLong(p.Bio, maxBioLen) {
				return single("bio", maxLenMsg(maxBioLen))
			}
			return nil
		}),
		check(func(p *models.Profile) FieldErrors {
			if tooLong(p.Location, maxLocationLen) {
				return single("location", maxLenMsg(maxLocationLen))
			}
			return nil
		}),
		check(func(p *models.Profile) FieldErrors {
			if p.Role != "" && !models.IsValidRole(p.Role) {
				return single("role", fmt.Sprintf("%q is not a valid choice.", p.Role))
			}
			return nil
		}),
		check(func(p *models.Profile) FieldErrors {
			if p.BirthDate != nil && p.BirthDate.After(r.Now()) {
				return single("birth_date", "Birth date cannot be in the future.")
			}
			return nil
		}),
	)
}
