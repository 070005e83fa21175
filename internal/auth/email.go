// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"strings"

	"github.com/samber/oops"
)

// ValidateEmail checks that the string has a local-part@domain.tld shape:
// exactly one @, a non-empty local part, and a dotted domain with non-empty
// labels. It is deliberately a shape check, not full RFC 5322 parsing;
// deliverability is the mail system's problem.
func ValidateEmail(email string) error {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return invalidEmail(email)
	}
	if local == "" {
		return invalidEmail(email)
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		// rejects bare hostnames like user@com
		return invalidEmail(email)
	}
	for _, label := range labels {
		if label == "" {
			// rejects user@.com, user@com., user@a..b
			return invalidEmail(email)
		}
	}
	return nil
}

func invalidEmail(email string) error {
	return oops.Code(CodeInvalidEmail).
		With("email", email).
		Errorf("Invalid email address")
}
