// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"strings"
	"unicode"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// passwordSpecialChars is the accepted special-character set.
const passwordSpecialChars = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

// ValidatePassword enforces the password composition policy: at least
// MinPasswordLength characters, one uppercase letter, one digit, and one
// character from passwordSpecialChars. Rules are checked in that order and
// the first violation is reported, each with its own message so the caller
// can tell the user exactly what to fix.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code(CodeWeakPassword).
			With("rule", "min_length").
			Errorf("Password must be at least %d characters long", MinPasswordLength)
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return oops.Code(CodeWeakPassword).
			With("rule", "uppercase").
			Errorf("Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return oops.Code(CodeWeakPassword).
			With("rule", "digit").
			Errorf("Password must contain at least one number")
	}
	if !strings.ContainsAny(password, passwordSpecialChars) {
		return oops.Code(CodeWeakPassword).
			With("rule", "special").
			Errorf("Password must contain at least one special character")
	}
	return nil
}
