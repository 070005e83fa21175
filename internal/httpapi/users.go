// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.logger, oops.Code(auth.CodeInvalidEmail).
			With("reason", "malformed body").
			Errorf("Invalid request body"))
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.recordRegistration("failure")
		writeError(c, s.logger, err)
		return
	}

	s.recordRegistration("success")
	c.JSON(http.StatusCreated, user.View())
}

// handleLogin verifies credentials and returns an access token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.logger, oops.Code(auth.CodeInvalidCredentials).
			With("reason", "malformed body").
			Errorf("Could not validate credentials"))
		return
	}

	token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.recordLogin("failure")
		writeError(c, s.logger, err)
		return
	}

	s.recordLogin("success")
	c.JSON(http.StatusCreated, token)
}

// handleCurrentUser returns the authenticated user's profile.
func (s *Server) handleCurrentUser(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		writeError(c, s.logger, oops.Code(auth.CodeInvalidCredentials).
			Errorf("Could not validate credentials"))
		return
	}
	c.JSON(http.StatusOK, user.View())
}

// handleDeleteCurrentUser permanently deletes the authenticated user.
func (s *Server) handleDeleteCurrentUser(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		writeError(c, s.logger, oops.Code(auth.CodeInvalidCredentials).
			Errorf("Could not validate credentials"))
		return
	}

	if err := s.auth.DeleteUser(c.Request.Context(), user.ID); err != nil {
		writeError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}
