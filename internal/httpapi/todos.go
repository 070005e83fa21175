// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/todo"
)

type createTodoRequest struct {
	Title string `json:"title"`
}

type updateTodoRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// handleCreateTodo creates a todo owned by the authenticated user.
func (s *Server) handleCreateTodo(c *gin.Context) {
	user := currentUser(c)

	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.logger, oops.Code(todo.CodeInvalidTitle).
			With("reason", "malformed body").
			Errorf("Invalid request body"))
		return
	}

	item, err := s.todos.Create(c.Request.Context(), user.ID, req.Title)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item.View())
}

// handleListTodos returns one page of the authenticated user's todos.
// Query parameters: page (default 1) and page_size (default 15, max 100).
func (s *Server) handleListTodos(c *gin.Context) {
	user := currentUser(c)

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", todo.DefaultPageSize)

	list, err := s.todos.List(c.Request.Context(), user.ID, page, pageSize)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// handleGetTodo returns a single todo by id.
func (s *Server) handleGetTodo(c *gin.Context) {
	user := currentUser(c)

	id, err := parseTodoID(c.Param("id"))
	if err != nil {
		writeError(c, s.logger, err)
		return
	}

	item, err := s.todos.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, item.View())
}

// handleUpdateTodo replaces the title and completed state of a todo.
func (s *Server) handleUpdateTodo(c *gin.Context) {
	user := currentUser(c)

	id, err := parseTodoID(c.Param("id"))
	if err != nil {
		writeError(c, s.logger, err)
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.logger, oops.Code(todo.CodeInvalidTitle).
			With("reason", "malformed body").
			Errorf("Invalid request body"))
		return
	}

	item, err := s.todos.Update(c.Request.Context(), user.ID, id, req.Title, req.Completed)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, item.View())
}

// handleDeleteTodo removes a todo and returns the deleted item.
func (s *Server) handleDeleteTodo(c *gin.Context) {
	user := currentUser(c)

	id, err := parseTodoID(c.Param("id"))
	if err != nil {
		writeError(c, s.logger, err)
		return
	}

	item, err := s.todos.Delete(c.Request.Context(), user.ID, id)
	if err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, item.View())
}

// parseTodoID parses a ULID path parameter. An unparsable id maps to not
// found rather than bad request so malformed and unknown ids are
// indistinguishable to the caller.
func parseTodoID(raw string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code(todo.CodeNotFound).
			With("todo_id", raw).
			Errorf("Todo with ID %s not found", raw)
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back to def on absence
// or parse failure.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
