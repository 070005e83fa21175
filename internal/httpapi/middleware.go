// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/observability"
)

// currentUserKey is the gin context key under which the authenticated user is
// stored by requireAuth.
const currentUserKey = "currentUser"

// requireAuth extracts the bearer token, resolves it to an active user, and
// stores the user in the request context. Any failure, including a missing or
// malformed Authorization header, yields the same 401 response.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			writeError(c, s.logger, oops.Code(auth.CodeInvalidCredentials).
				With("reason", "missing bearer token").
				Errorf("Could not validate credentials"))
			return
		}

		user, err := s.auth.ResolveCurrentUser(c.Request.Context(), token)
		if err != nil {
			writeError(c, s.logger, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// bearerToken parses an Authorization header of the form "Bearer <token>".
// The scheme comparison is case-insensitive per RFC 9110.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// currentUser retrieves the user stored by requireAuth.
func currentUser(c *gin.Context) *auth.User {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*auth.User)
	if !ok {
		return nil
	}
	return user
}

// corsMiddleware handles cross-origin requests for the configured origins.
// An origins list containing "*" allows any origin.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger logs each request after completion and records the request
// counter when metrics are enabled.
func requestLogger(logger *slog.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		logger.Info("http request",
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)

		if metrics != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(
				route, c.Request.Method, strconv.Itoa(status),
			).Inc()
		}
	}
}
