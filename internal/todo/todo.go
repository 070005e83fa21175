// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package todo provides the todo resource: a per-user list of items with
// title and completion state.
package todo

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested todo does not exist.
var ErrNotFound = errors.New("not found")

// Error codes for todo operations.
const (
	CodeNotFound     = "TODO_NOT_FOUND"
	CodeInvalidUser  = "TODO_INVALID_USER"
	CodeInvalidTitle = "TODO_INVALID_TITLE"
)

// Todo is a single todo item. Every todo belongs to the user that created it.
type Todo struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	Title     string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTodo creates a Todo owned by the given user.
func NewTodo(userID ulid.ULID, title string) (*Todo, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code(CodeInvalidUser).Errorf("user ID cannot be zero")
	}
	if title == "" {
		return nil, oops.Code(CodeInvalidTitle).Errorf("title cannot be empty")
	}

	now := time.Now().UTC()
	return &Todo{
		ID:        ulid.Make(),
		UserID:    userID,
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// View is the outward-facing shape of a Todo, mapped field by field.
type View struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View maps the record to its outward-facing shape.
func (t *Todo) View() View {
	return View{
		ID:        t.ID.String(),
		UserID:    t.UserID.String(),
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// List is one page of a user's todos.
type List struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalCount int    `json:"total_count"`
	Todos      []View `json:"todos"`
}

// Repository manages todo persistence.
type Repository interface {
	// Create stores a new todo.
	Create(ctx context.Context, todo *Todo) error

	// GetByID retrieves a todo by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*Todo, error)

	// ListByUser returns one page of the user's todos ordered by creation
	// (newest first), plus the user's total todo count.
	ListByUser(ctx context.Context, userID ulid.ULID, offset, limit int) ([]*Todo, int, error)

	// Update persists title and completed changes.
	Update(ctx context.Context, todo *Todo) error

	// Delete removes a todo by ID. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id ulid.ULID) error
}
