// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package auth provides credential authentication and session issuance.
//
// # Domain Types
//
// User is the account record. Create one through Service.Register rather
// than direct struct initialization; Register enforces the password policy,
// email shape, and uniqueness checks before anything is persisted.
//
// # Components
//
//   - ValidatePassword / ValidateEmail - syntactic checks on registration input
//   - Argon2idHasher - one-way credential hashing with per-call salt
//   - TokenIssuer - signed, time-bounded access tokens (JWT)
//   - UserRepository - persistence boundary, implemented in the postgres subpackage
//   - Service - orchestrates register, login, and current-user resolution
//
// All expected failures carry an oops error code (AUTH_WEAK_PASSWORD,
// AUTH_INVALID_EMAIL, AUTH_EMAIL_TAKEN, AUTH_USERNAME_TAKEN,
// AUTH_INVALID_CREDENTIALS, AUTH_NOT_FOUND). Credential and token failures
// deliberately collapse into AUTH_INVALID_CREDENTIALS so callers cannot
// distinguish which check failed.
package auth
