// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/todo"
	"github.com/taskvault/taskvault/pkg/errutil"
)

// errorResponse is the JSON error body for every failed request.
type errorResponse struct {
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail"`
}

// statusForCode maps domain error codes to HTTP statuses. Unknown codes
// (including internal *_FAILED codes) fall through to 500.
func statusForCode(code string) int {
	switch code {
	case auth.CodeWeakPassword,
		auth.CodeInvalidEmail,
		auth.CodeInvalidUsername,
		auth.CodeEmailTaken,
		auth.CodeUsernameTaken,
		todo.CodeInvalidTitle,
		todo.CodeInvalidUser:
		return http.StatusBadRequest
	case auth.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case auth.CodeNotFound, todo.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a JSON error response. Internal errors are logged
// with their full context and surfaced with a generic message so storage and
// infrastructure details never leak to clients.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	code := errutil.Code(err)
	status := statusForCode(code)

	if status == http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err)
		c.AbortWithStatusJSON(status, errorResponse{Detail: "Internal server error"})
		return
	}

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}

	c.AbortWithStatusJSON(status, errorResponse{Code: code, Detail: err.Error()})
}
