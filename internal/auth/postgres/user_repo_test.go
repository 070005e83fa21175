// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/auth/postgres"
	"github.com/taskvault/taskvault/pkg/errutil"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func testUser(t *testing.T) *auth.User {
	t.Helper()
	now := time.Now().UTC()
	return &auth.User{
		ID:           ulid.Make(),
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// insertUserArgs matches the 8 INSERT arguments without constraining them;
// pgxmock requires the expected and actual argument counts to agree.
func insertUserArgs() []any {
	args := make([]any, 8)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func userRows(user *auth.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "username", "password_hash",
		"is_superuser", "is_active", "created_at", "updated_at",
	}).AddRow(
		user.ID.String(), user.Email, user.Username, user.PasswordHash,
		user.IsSuperuser, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantCode  string
		errMsg    string
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(insertUserArgs()...).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate email maps to conflict",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(insertUserArgs()...).
					WillReturnError(&pgconn.PgError{
						Code:           pgerrcode.UniqueViolation,
						ConstraintName: "users_email_key",
					})
			},
			wantCode: auth.CodeEmailTaken,
			errMsg:   "Email alice@example.com already registered",
		},
		{
			name: "duplicate username maps to conflict",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(insertUserArgs()...).
					WillReturnError(&pgconn.PgError{
						Code:           pgerrcode.UniqueViolation,
						ConstraintName: "users_username_key",
					})
			},
			wantCode: auth.CodeUsernameTaken,
			errMsg:   "Username alice already registered",
		},
		{
			name: "other database error is internal",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(insertUserArgs()...).
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: "USER_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setupMock(mock)

			repo := postgres.NewUserRepository(mock)
			err := repo.Create(ctx, testUser(t))

			if tt.wantCode == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("exists by email", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("alice@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		repo := postgres.NewUserRepository(mock)
		exists, err := repo.ExistsByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exists by username false", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		repo := postgres.NewUserRepository(mock)
		exists, err := repo.ExistsByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("alice@example.com").
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewUserRepository(mock)
		_, err := repo.ExistsByEmail(ctx, "alice@example.com")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "USER_EXISTS_FAILED")
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("returns active user", func(t *testing.T) {
		mock := newMockPool(t)
		user := testUser(t)
		mock.ExpectQuery(`SELECT id, email, username, password_hash`).
			WithArgs("alice@example.com").
			WillReturnRows(userRows(user))

		repo := postgres.NewUserRepository(mock)
		got, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row maps to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT id, email, username, password_hash`).
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		repo := postgres.NewUserRepository(mock)
		_, err := repo.FindByEmail(ctx, "ghost@example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, auth.CodeNotFound)
	})

	t.Run("corrupt stored id is an error", func(t *testing.T) {
		mock := newMockPool(t)
		rows := pgxmock.NewRows([]string{
			"id", "email", "username", "password_hash",
			"is_superuser", "is_active", "created_at", "updated_at",
		}).AddRow(
			"not-a-ulid", "alice@example.com", "alice", "hash",
			false, true, time.Now(), time.Now(),
		)
		mock.ExpectQuery(`SELECT id, email, username, password_hash`).
			WithArgs("alice@example.com").
			WillReturnRows(rows)

		repo := postgres.NewUserRepository(mock)
		_, err := repo.FindByEmail(ctx, "alice@example.com")
		require.Error(t, err)
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns active user", func(t *testing.T) {
		mock := newMockPool(t)
		user := testUser(t)
		mock.ExpectQuery(`SELECT id, email, username, password_hash`).
			WithArgs(user.ID.String()).
			WillReturnRows(userRows(user))

		repo := postgres.NewUserRepository(mock)
		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)
	})

	t.Run("no row maps to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectQuery(`SELECT id, email, username, password_hash`).
			WithArgs(id.String()).
			WillReturnError(pgx.ErrNoRows)

		repo := postgres.NewUserRepository(mock)
		_, err := repo.FindByID(ctx, id)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates existing user", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectExec(`UPDATE users SET is_active = FALSE`).
			WithArgs(id.String(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := postgres.NewUserRepository(mock)
		require.NoError(t, repo.Deactivate(ctx, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows maps to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectExec(`UPDATE users SET is_active = FALSE`).
			WithArgs(id.String(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := postgres.NewUserRepository(mock)
		err := repo.Deactivate(ctx, id)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing user", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := postgres.NewUserRepository(mock)
		require.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("zero rows maps to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewUserRepository(mock)
		err := repo.Delete(ctx, id)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}
