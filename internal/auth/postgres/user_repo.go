// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package postgres implements auth.UserRepository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/auth"
)

// Unique index names from the users migration. The repository translates
// violations of these into the same conflict codes the service's pre-checks
// produce, so a lost registration race surfaces identically.
const (
	emailUniqueIndex    = "users_email_key"
	usernameUniqueIndex = "users_username_key"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserRepository using PostgreSQL.
// Email comparisons are case-insensitive (LOWER on both sides, backed by a
// unique index on LOWER(email)); username comparisons are exact.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. Unique index violations are mapped to
// AUTH_EMAIL_TAKEN / AUTH_USERNAME_TAKEN.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, email, username, password_hash,
			is_superuser, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID.String(),
		user.Email,
		user.Username,
		user.PasswordHash,
		user.IsSuperuser,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case emailUniqueIndex:
				// Errorf, not Wrap: the pg error text would leak through
				// Error() into the client-facing detail.
				return oops.Code(auth.CodeEmailTaken).
					With("email", user.Email).
					With("cause", err.Error()).
					Errorf("Email %s already registered", user.Email)
			case usernameUniqueIndex:
				return oops.Code(auth.CodeUsernameTaken).
					With("username", user.Username).
					With("cause", err.Error()).
					Errorf("Username %s already registered", user.Username)
			}
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// ExistsByEmail reports whether any row, active or not, holds the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "exists by email").
			Wrap(err)
	}
	return exists, nil
}

// ExistsByUsername reports whether any row, active or not, holds the username.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
	`, username).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "exists by username").
			Wrap(err)
	}
	return exists, nil
}

// FindByEmail retrieves an active user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash,
		       is_superuser, is_active, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1) AND is_active
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeNotFound).
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "find by email").
			Wrap(err)
	}
	return user, nil
}

// FindByUsername retrieves an active user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash,
		       is_superuser, is_active, created_at, updated_at
		FROM users
		WHERE username = $1 AND is_active
	`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeNotFound).
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "find by username").
			Wrap(err)
	}
	return user, nil
}

// FindByID retrieves an active user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash,
		       is_superuser, is_active, created_at, updated_at
		FROM users
		WHERE id = $1 AND is_active
	`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeNotFound).
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "find by id").
			Wrap(err)
	}
	return user, nil
}

// Deactivate sets is_active to false, keeping the row.
func (r *UserRepository) Deactivate(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1
	`, id.String(), time.Now().UTC())
	if err != nil {
		return oops.Code("USER_DEACTIVATE_FAILED").
			With("operation", "deactivate user").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code(auth.CodeNotFound).
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete permanently removes the row. Todos owned by the user go with it
// via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code(auth.CodeNotFound).
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser maps a row to an auth.User. The ID column is stored as text.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		user  auth.User
		idStr string
	)
	err := row.Scan(
		&idStr,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.IsSuperuser,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With("id", idStr).
			Wrapf(err, "corrupt user ID in database")
	}
	return &user, nil
}
