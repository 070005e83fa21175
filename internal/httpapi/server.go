// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package httpapi exposes the user and todo services over a JSON REST API.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/observability"
	"github.com/taskvault/taskvault/internal/todo"
)

// Server holds the API dependencies and builds the request router.
type Server struct {
	auth    *auth.Service
	todos   *todo.Service
	logger  *slog.Logger
	metrics *observability.Metrics
	origins []string
}

// Options configures optional Server behavior.
type Options struct {
	// Metrics receives request and outcome counters. Nil disables recording.
	Metrics *observability.Metrics
	// CORSOrigins is the allowed origin list. Empty disables CORS handling.
	CORSOrigins []string
}

// NewServer creates an API server over the given services.
func NewServer(authSvc *auth.Service, todoSvc *todo.Service, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:    authSvc,
		todos:   todoSvc,
		logger:  logger,
		metrics: opts.Metrics,
		origins: opts.CORSOrigins,
	}
}

// Router builds the gin engine with all routes and middleware registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger, s.metrics))
	if len(s.origins) > 0 {
		router.Use(corsMiddleware(s.origins))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "TaskVault API"})
	})

	users := v1.Group("/users")
	users.POST("/register", s.handleRegister)
	users.POST("/login", s.handleLogin)
	users.GET("/me", s.requireAuth(), s.handleCurrentUser)
	users.DELETE("/me", s.requireAuth(), s.handleDeleteCurrentUser)

	todos := v1.Group("/todos", s.requireAuth())
	todos.POST("", s.handleCreateTodo)
	todos.GET("", s.handleListTodos)
	todos.GET("/:id", s.handleGetTodo)
	todos.PUT("/:id", s.handleUpdateTodo)
	todos.DELETE("/:id", s.handleDeleteTodo)

	return router
}
