// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Error codes attached to oops errors at the service boundary.
// HTTP handlers map these to status codes; tests assert on them.
const (
	CodeWeakPassword       = "AUTH_WEAK_PASSWORD"
	CodeInvalidEmail       = "AUTH_INVALID_EMAIL"
	CodeInvalidUsername    = "AUTH_INVALID_USERNAME"
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeUsernameTaken      = "AUTH_USERNAME_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeNotFound           = "AUTH_NOT_FOUND"
)

// invalidCredentialsMessage is the single caller-facing message for every
// credential or token failure. Keeping it uniform prevents an attacker from
// learning whether the email exists, the password was wrong, or the token
// was malformed, tampered, or expired.
const invalidCredentialsMessage = "Could not validate credentials"
