// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package mocks provides testify mocks for the todo package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/taskvault/taskvault/internal/todo"
)

// MockRepository is a mock implementation of todo.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a MockRepository whose expectations are asserted
// on test cleanup.
func NewMockRepository(t *testing.T) *MockRepository {
	t.Helper()
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, item *todo.Todo) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id ulid.ULID) (*todo.Todo, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*todo.Todo); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID ulid.ULID, offset, limit int) ([]*todo.Todo, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	var items []*todo.Todo
	if got, ok := args.Get(0).([]*todo.Todo); ok {
		items = got
	}
	return items, args.Int(1), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, item *todo.Todo) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
