// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// User is an account record. Email and username are each unique across all
// rows (active or not); IsActive false makes the user invisible to lookups
// but keeps the row, so the identifiers stay reserved.
type User struct {
	ID           ulid.ULID
	Email        string
	Username     string
	PasswordHash string
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a User with a fresh ID and timestamps. The username is
// validated here; email and password policy are the Service's concern since
// the hash has already been computed by the time this runs.
func NewUser(email, username, passwordHash string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code(CodeInvalidUsername).Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code(CodeInvalidUsername).
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code(CodeInvalidUsername).
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code(CodeInvalidUsername).
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// UserView is the outward-facing shape of a User. The password hash never
// leaves this package; the mapping is explicit field by field rather than a
// generic struct dump so the contract stays machine-checkable.
type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// View maps the record to its outward-facing shape.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID.String(),
		Email:       u.Email,
		Username:    u.Username,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
}

// UserRepository manages user persistence. Implementations commit before
// returning; there is no session state to carry between calls.
//
// Case policy: email comparisons are case-insensitive, username comparisons
// are exact. Exists checks consider every row including deactivated ones,
// matching the storage layer's unique indexes; Find lookups see active users
// only.
type UserRepository interface {
	// Create stores a new user. A row with the same email or username, active
	// or not, makes it fail with AUTH_EMAIL_TAKEN or AUTH_USERNAME_TAKEN via
	// the storage unique index, even if the caller skipped the exists checks.
	Create(ctx context.Context, user *User) error

	// ExistsByEmail reports whether any row, active or not, holds the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername reports whether any row, active or not, holds the username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// FindByEmail retrieves an active user by email.
	// Returns ErrNotFound if no active user has the email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername retrieves an active user by username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID retrieves an active user by ID.
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// Deactivate sets is_active to false, keeping the row.
	Deactivate(ctx context.Context, id ulid.ULID) error

	// Delete permanently removes the row.
	Delete(ctx context.Context, id ulid.ULID) error
}
