// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/internal/todo"
	"github.com/taskvault/taskvault/internal/todo/postgres"
	"github.com/taskvault/taskvault/pkg/errutil"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func testTodo(t *testing.T) *todo.Todo {
	t.Helper()
	item, err := todo.NewTodo(ulid.Make(), "buy milk")
	require.NoError(t, err)
	return item
}

func todoColumns() []string {
	return []string{"id", "user_id", "title", "completed", "created_at", "updated_at"}
}

func todoRow(item *todo.Todo) *pgxmock.Rows {
	return pgxmock.NewRows(todoColumns()).AddRow(
		item.ID.String(), item.UserID.String(), item.Title,
		item.Completed, item.CreatedAt, item.UpdatedAt,
	)
}

func TestTodoRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful insert", func(t *testing.T) {
		mock := newMockPool(t)
		item := testTodo(t)
		mock.ExpectExec(`INSERT INTO todos`).
			WithArgs(item.ID.String(), item.UserID.String(), item.Title,
				item.Completed, item.CreatedAt, item.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := postgres.NewTodoRepository(mock)
		require.NoError(t, repo.Create(ctx, item))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO todos`).
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewTodoRepository(mock)
		err := repo.Create(ctx, testTodo(t))
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TODO_INSERT_FAILED")
	})
}

func TestTodoRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns todo", func(t *testing.T) {
		mock := newMockPool(t)
		item := testTodo(t)
		mock.ExpectQuery(`SELECT id, user_id, title, completed`).
			WithArgs(item.ID.String()).
			WillReturnRows(todoRow(item))

		repo := postgres.NewTodoRepository(mock)
		got, err := repo.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, item.UserID, got.UserID)
		assert.Equal(t, item.Title, got.Title)
	})

	t.Run("no row maps to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectQuery(`SELECT id, user_id, title, completed`).
			WithArgs(id.String()).
			WillReturnError(pgx.ErrNoRows)

		repo := postgres.NewTodoRepository(mock)
		_, err := repo.GetByID(ctx, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, todo.ErrNotFound)
		errutil.AssertErrorCode(t, err, todo.CodeNotFound)
	})
}

func TestTodoRepository_ListByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page and total", func(t *testing.T) {
		mock := newMockPool(t)
		owner := ulid.Make()
		now := time.Now().UTC()

		first := ulid.Make()
		second := ulid.Make()
		rows := pgxmock.NewRows(todoColumns()).
			AddRow(second.String(), owner.String(), "newer", false, now, now).
			AddRow(first.String(), owner.String(), "older", true, now, now)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM todos`).
			WithArgs(owner.String()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
		mock.ExpectQuery(`SELECT id, user_id, title, completed`).
			WithArgs(owner.String(), 0, 15).
			WillReturnRows(rows)

		repo := postgres.NewTodoRepository(mock)
		items, total, err := repo.ListByUser(ctx, owner, 0, 15)
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		require.Len(t, items, 2)
		assert.Equal(t, "newer", items[0].Title)
		assert.Equal(t, "older", items[1].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty page", func(t *testing.T) {
		mock := newMockPool(t)
		owner := ulid.Make()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM todos`).
			WithArgs(owner.String()).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT id, user_id, title, completed`).
			WithArgs(owner.String(), 0, 15).
			WillReturnRows(pgxmock.NewRows(todoColumns()))

		repo := postgres.NewTodoRepository(mock)
		items, total, err := repo.ListByUser(ctx, owner, 0, 15)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})

	t.Run("count failure", func(t *testing.T) {
		mock := newMockPool(t)
		owner := ulid.Make()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM todos`).
			WithArgs(owner.String()).
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewTodoRepository(mock)
		_, _, err := repo.ListByUser(ctx, owner, 0, 15)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TODO_LIST_FAILED")
	})
}

func TestTodoRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates existing todo", func(t *testing.T) {
		mock := newMockPool(t)
		item := testTodo(t)
		mock.ExpectExec(`UPDATE todos SET title`).
			WithArgs(item.ID.String(), item.Title, item.Completed).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := postgres.NewTodoRepository(mock)
		require.NoError(t, repo.Update(ctx, item))
	})

	t.Run("zero rows maps to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		item := testTodo(t)
		mock.ExpectExec(`UPDATE todos SET title`).
			WithArgs(item.ID.String(), item.Title, item.Completed).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := postgres.NewTodoRepository(mock)
		err := repo.Update(ctx, item)
		assert.ErrorIs(t, err, todo.ErrNotFound)
	})
}

func TestTodoRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing todo", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM todos`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := postgres.NewTodoRepository(mock)
		require.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("zero rows maps to ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM todos`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewTodoRepository(mock)
		err := repo.Delete(ctx, id)
		assert.ErrorIs(t, err, todo.ErrNotFound)
	})
}
