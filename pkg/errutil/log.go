// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package errutil provides helpers for working with coded (oops) errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Code extracts the error code from an oops error, or "" for plain and
// codeless errors. oops carries the code as any; every code in this codebase
// is a string.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		code, _ := oopsErr.Code().(string)
		return code
	}
	return ""
}

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}
