// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package postgres implements todo.Repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/todo"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TodoRepository implements todo.Repository using PostgreSQL.
type TodoRepository struct {
	db DB
}

// NewTodoRepository creates a new TodoRepository.
func NewTodoRepository(db DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create stores a new todo.
func (r *TodoRepository) Create(ctx context.Context, item *todo.Todo) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO todos (id, user_id, title, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		item.ID.String(),
		item.UserID.String(),
		item.Title,
		item.Completed,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TODO_INSERT_FAILED").
			With("operation", "insert todo").
			With("todo_id", item.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a todo by ID.
func (r *TodoRepository) GetByID(ctx context.Context, id ulid.ULID) (*todo.Todo, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, title, completed, created_at, updated_at
		FROM todos
		WHERE id = $1
	`, id.String())

	item, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(todo.CodeNotFound).
			With("todo_id", id.String()).
			Wrap(todo.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TODO_GET_FAILED").
			With("operation", "get todo by id").
			With("todo_id", id.String()).
			Wrap(err)
	}
	return item, nil
}

// ListByUser returns one page of the user's todos, newest first, plus the
// user's total todo count.
func (r *TodoRepository) ListByUser(ctx context.Context, userID ulid.ULID, offset, limit int) ([]*todo.Todo, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM todos WHERE user_id = $1
	`, userID.String()).Scan(&total)
	if err != nil {
		return nil, 0, oops.Code("TODO_LIST_FAILED").
			With("operation", "count todos").
			Wrap(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, completed, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY id DESC
		OFFSET $2 LIMIT $3
	`, userID.String(), offset, limit)
	if err != nil {
		return nil, 0, oops.Code("TODO_LIST_FAILED").
			With("operation", "query todos").
			Wrap(err)
	}
	defer rows.Close()

	var items []*todo.Todo
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, 0, oops.Code("TODO_LIST_FAILED").
				With("operation", "scan todo row").
				Wrap(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, oops.Code("TODO_LIST_FAILED").
			With("operation", "iterate todos").
			Wrap(err)
	}

	return items, total, nil
}

// Update persists title and completed changes.
func (r *TodoRepository) Update(ctx context.Context, item *todo.Todo) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE todos SET title = $2, completed = $3, updated_at = NOW()
		WHERE id = $1
	`, item.ID.String(), item.Title, item.Completed)
	if err != nil {
		return oops.Code("TODO_UPDATE_FAILED").
			With("operation", "update todo").
			With("todo_id", item.ID.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code(todo.CodeNotFound).
			With("todo_id", item.ID.String()).
			Wrap(todo.ErrNotFound)
	}
	return nil
}

// Delete removes a todo by ID.
func (r *TodoRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("TODO_DELETE_FAILED").
			With("operation", "delete todo").
			With("todo_id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code(todo.CodeNotFound).
			With("todo_id", id.String()).
			Wrap(todo.ErrNotFound)
	}
	return nil
}

// scanTodo maps a row to a todo.Todo. ID columns are stored as text.
func scanTodo(row pgx.Row) (*todo.Todo, error) {
	var (
		item          todo.Todo
		idStr, uidStr string
	)
	err := row.Scan(
		&idStr,
		&uidStr,
		&item.Title,
		&item.Completed,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if item.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("TODO_SCAN_FAILED").
			With("id", idStr).
			Wrapf(err, "corrupt todo ID in database")
	}
	if item.UserID, err = ulid.Parse(uidStr); err != nil {
		return nil, oops.Code("TODO_SCAN_FAILED").
			With("user_id", uidStr).
			Wrapf(err, "corrupt user ID in database")
	}
	return &item, nil
}
