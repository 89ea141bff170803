// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
users.go - Principals, Profiles and Roles

Key Operations:
  - CreateUser: insert a user and its profile in one transaction
  - GetUserByID / GetUserByUsername: lookups joined with the profile row
  - EmailInUse: uniqueness lookup used by the signup and profile validators
  - UpdateUser / UpdateProfile / SetUserRole: partial edits
  - UpdateAccount: user and profile edit in one transaction
  - DeleteUser: removes the user and cascades to everything it owns
  - GetRoleStats: counts per role for the admin dashboard

A user row without a profile row resolves to the Member role.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/shelfwise/internal/models"
)

const userColumns = `u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name,
	u.is_staff, u.is_superuser, u.is_active, u.date_joined,
	p.user_id, p.role, p.bio, p.location, p.birth_date`

const userFrom = `FROM users u LEFT JOIN profiles p ON p.user_id = u.id`

// scanUserRow scans a joined user/profile row, handling the nullable profile side.
func scanUserRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	u := &models.User{}
	var profileUserID sql.NullInt64
	var role, bio, location sql.NullString
	var birthDate sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.DateJoined,
		&profileUserID, &role, &bio, &location, &birthDate,
	)
	if err != nil {
		return nil, err
	}

	if profileUserID.Valid {
		u.Profile = &models.Profile{
			UserID:   profileUserID.Int64,
			Role:     role.String,
			Bio:      bio.String,
			Location: location.String,
		}
		if birthDate.Valid {
			bd := birthDate.Time
			u.Profile.BirthDate = &bd
		}
	}
	return u, nil
}

// CreateUser inserts u and a profile with the given role in one transaction.
// u.ID and u.DateJoined are filled in. An empty role means Member.
func (db *DB) CreateUser(ctx context.Context, u *models.User, role string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if role == "" {
		role = models.DefaultRole
	}
	if !models.IsValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}

	db.idMu.Lock()
	defer db.idMu.Unlock()

	return db.withTx(ctx, func(r runner) error {
		taken, err := r.exists(ctx, `SELECT 1 FROM users WHERE LOWER(username) = LOWER(?)`, u.Username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return ErrDuplicate
		}

		id, err := allocateID(ctx, r, "users")
		if err != nil {
			return err
		}
		if u.DateJoined.IsZero() {
			u.DateJoined = db.now()
		}

		_, err = r.exec(ctx, `INSERT INTO users (
			id, username, email, password_hash, first_name, last_name,
			is_staff, is_superuser, is_active, date_joined
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
			u.IsStaff, u.IsSuperuser, u.IsActive, u.DateJoined)
		if err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		profile := models.NewProfile(id, role)
		if _, err := r.exec(ctx,
			`INSERT INTO profiles (user_id, role, bio, location, birth_date) VALUES (?, ?, ?, ?, ?)`,
			profile.UserID, profile.Role, profile.Bio, profile.Location, nil); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		u.ID = id
		u.Profile = profile
		return nil
	})
}

// GetUserByID returns the user with its profile, or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.run().queryRow(ctx, `SELECT `+userColumns+` `+userFrom+` WHERE u.id = ?`, id)
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername matches case-insensitively, as login does.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.run().queryRow(ctx, `SELECT `+userColumns+` `+userFrom+` WHERE LOWER(u.username) = LOWER(?)`, username)
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return u, nil
}

// EmailInUse reports whether another user (not excludeUserID) already has
// email, compared case-insensitively. Pass 0 to check against everyone.
func (db *DB) EmailInUse(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	inUse, err := db.run().exists(ctx,
		`SELECT 1 FROM users WHERE LOWER(email) = LOWER(?) AND id <> ?`, email, excludeUserID)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return inUse, nil
}

// ListUsers returns all users ordered by username.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.run().query(ctx, `SELECT `+userColumns+` `+userFrom+` ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser writes the editable account columns of u.
func (db *DB) UpdateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return updateUser(ctx, db.run(), u)
}

// UpdateProfile writes bio, location and birth date. The role is changed
// only through SetUserRole.
func (db *DB) UpdateProfile(ctx context.Context, p *models.Profile) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return updateProfile(ctx, db.run(), p)
}

// UpdateAccount writes the account columns of u and its profile p in a
// single transaction, so a failed profile write leaves the user untouched.
func (db *DB) UpdateAccount(ctx context.Context, u *models.User, p *models.Profile) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if p.UserID == 0 {
		p.UserID = u.ID
	}
	if p.UserID != u.ID {
		return fmt.Errorf("profile %d does not belong to user %d", p.UserID, u.ID)
	}
	return db.withTx(ctx, func(r runner) error {
		if err := updateUser(ctx, r, u); err != nil {
			return err
		}
		return updateProfile(ctx, r, p)
	})
}

func updateUser(ctx context.Context, r runner, u *models.User) error {
	err := r.execAffecting(ctx,
		`UPDATE users SET email = ?, first_name = ?, last_name = ?, is_active = ? WHERE id = ?`,
		u.Email, u.FirstName, u.LastName, u.IsActive, u.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}
	return err
}

func updateProfile(ctx context.Context, r runner, p *models.Profile) error {
	var birthDate any
	if p.BirthDate != nil {
		birthDate = *p.BirthDate
	}

	err := r.execAffecting(ctx,
		`UPDATE profiles SET bio = ?, location = ?, birth_date = ? WHERE user_id = ?`,
		p.Bio, p.Location, birthDate, p.UserID)
	if errors.Is(err, ErrNotFound) {
		return insertMissingProfile(ctx, r, p, birthDate)
	}
	if err != nil {
		return fmt.Errorf("failed to update profile %d: %w", p.UserID, err)
	}
	return nil
}

// insertMissingProfile backfills a profile for users created before profiles
// existed, so updates never silently drop.
func insertMissingProfile(ctx context.Context, r runner, p *models.Profile, birthDate any) error {
	ok, err := r.exists(ctx, `SELECT 1 FROM users WHERE id = ?`, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to check user %d: %w", p.UserID, err)
	}
	if !ok {
		return ErrNotFound
	}
	role := p.Role
	if role == "" {
		role = models.DefaultRole
	}
	_, err = r.exec(ctx,
		`INSERT INTO profiles (user_id, role, bio, location, birth_date) VALUES (?, ?, ?, ?, ?)`,
		p.UserID, role, p.Bio, p.Location, birthDate)
	if err != nil {
		return fmt.Errorf("failed to create profile %d: %w", p.UserID, err)
	}
	return nil
}

// SetUserRole changes the profile role and returns the previous one.
func (db *DB) SetUserRole(ctx context.Context, userID int64, role string) (string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if !models.IsValidRole(role) {
		return "", fmt.Errorf("invalid role %q", role)
	}

	u, err := db.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	previous := u.Role()

	if u.Profile == nil {
		p := models.NewProfile(userID, role)
		return previous, insertMissingProfile(ctx, db.run(), p, nil)
	}
	if _, err := db.run().exec(ctx, `UPDATE profiles SET role = ? WHERE user_id = ?`, role, userID); err != nil {
		return "", fmt.Errorf("failed to set role for user %d: %w", userID, err)
	}
	return previous, nil
}

// DeleteUser removes the user and everything that hangs off it: token,
// profile, posts (with their comments and tag links), comments written on
// other posts, and owned books (with their library links). Authors the user
// created are kept with created_by cleared.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	steps := []struct {
		what  string
		query string
	}{
		{"post comments", `DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?)`},
		{"post tags", `DELETE FROM post_tags WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?)`},
		{"posts", `DELETE FROM posts WHERE author_id = ?`},
		{"comments", `DELETE FROM comments WHERE author_id = ?`},
		{"book links", `DELETE FROM library_books WHERE book_id IN (SELECT id FROM books WHERE owner_id = ?)`},
		{"books", `DELETE FROM books WHERE owner_id = ?`},
		{"author ownership", `UPDATE authors SET created_by = NULL WHERE created_by = ?`},
		{"token", `DELETE FROM tokens WHERE user_id = ?`},
		{"profile", `DELETE FROM profiles WHERE user_id = ?`},
	}

	return db.withTx(ctx, func(r runner) error {
		ok, err := r.exists(ctx, `SELECT 1 FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to check user %d: %w", id, err)
		}
		if !ok {
			return ErrNotFound
		}
		for _, step := range steps {
			if _, err := r.exec(ctx, step.query, id); err != nil {
				return fmt.Errorf("failed to delete %s of user %d: %w", step.what, id, err)
			}
		}
		if err := r.execAffecting(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
		return nil
	})
}

// GetRoleStats counts users per resolved role; users without a profile count as Member.
func (db *DB) GetRoleStats(ctx context.Context) (*models.RoleStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.run().query(ctx,
		`SELECT COALESCE(p.role, 'Member') AS role, COUNT(*) `+userFrom+` GROUP BY COALESCE(p.role, 'Member')`)
	if err != nil {
		return nil, fmt.Errorf("failed to count roles: %w", err)
	}
	defer rows.Close()

	stats := &models.RoleStats{ByRole: make(map[string]int, len(models.ValidRoles))}
	for _, role := range models.ValidRoles {
		stats.ByRole[role] = 0
	}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		stats.ByRole[role] += n
		stats.TotalUsers += n
	}
	return stats, rows.Err()
}
