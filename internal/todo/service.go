// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package todo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Pagination bounds.
const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Service provides todo operations scoped to their owning user. A todo that
// belongs to another user is reported as not found, never as forbidden, so
// ids cannot be probed.
type Service struct {
	todos  Repository
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(todos Repository) (*Service, error) {
	return NewServiceWithLogger(todos, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(todos Repository, logger *slog.Logger) (*Service, error) {
	if todos == nil {
		return nil, oops.Errorf("todos repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{todos: todos, logger: logger}, nil
}

// Create stores a new todo owned by userID.
func (s *Service) Create(ctx context.Context, userID ulid.ULID, title string) (*Todo, error) {
	item, err := NewTodo(userID, title)
	if err != nil {
		return nil, err
	}
	if err := s.todos.Create(ctx, item); err != nil {
		return nil, oops.Code("TODO_CREATE_FAILED").
			With("operation", "insert todo").
			Wrap(err)
	}
	s.logger.Debug("todo created", "todo_id", item.ID.String(), "user_id", userID.String())
	return item, nil
}

// List returns one page of the user's todos. Page numbers start at 1; a
// non-positive page or page size falls back to 1 / DefaultPageSize, and the
// page size is capped at MaxPageSize.
func (s *Service) List(ctx context.Context, userID ulid.ULID, page, pageSize int) (List, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	items, total, err := s.todos.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return List{}, oops.Code("TODO_LIST_FAILED").
			With("operation", "list todos").
			With("page", page).
			Wrap(err)
	}

	views := make([]View, 0, len(items))
	for _, item := range items {
		views = append(views, item.View())
	}
	return List{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		Todos:      views,
	}, nil
}

// Get retrieves one of the user's todos by ID.
func (s *Service) Get(ctx context.Context, userID, id ulid.ULID) (*Todo, error) {
	return s.getOwned(ctx, userID, id)
}

// Update changes the title and completed state of one of the user's todos.
func (s *Service) Update(ctx context.Context, userID, id ulid.ULID, title string, completed bool) (*Todo, error) {
	item, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, oops.Code(CodeInvalidTitle).Errorf("title cannot be empty")
	}

	item.Title = title
	item.Completed = completed
	if err := s.todos.Update(ctx, item); err != nil {
		return nil, oops.Code("TODO_UPDATE_FAILED").
			With("operation", "update todo").
			With("todo_id", id.String()).
			Wrap(err)
	}
	return item, nil
}

// Delete removes one of the user's todos and returns the deleted item.
func (s *Service) Delete(ctx context.Context, userID, id ulid.ULID) (*Todo, error) {
	item, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.todos.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.notFound(id)
		}
		return nil, oops.Code("TODO_DELETE_FAILED").
			With("operation", "delete todo").
			With("todo_id", id.String()).
			Wrap(err)
	}
	s.logger.Debug("todo deleted", "todo_id", id.String(), "user_id", userID.String())
	return item, nil
}

// getOwned fetches the todo and hides it when it belongs to someone else.
func (s *Service) getOwned(ctx context.Context, userID, id ulid.ULID) (*Todo, error) {
	item, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.notFound(id)
		}
		return nil, oops.Code("TODO_GET_FAILED").
			With("operation", "get todo").
			With("todo_id", id.String()).
			Wrap(err)
	}
	if item.UserID.Compare(userID) != 0 {
		return nil, s.notFound(id)
	}
	return item, nil
}

func (s *Service) notFound(id ulid.ULID) error {
	return oops.Code(CodeNotFound).
		With("todo_id", id.String()).
		Errorf("Todo with ID %s not found", id)
}
