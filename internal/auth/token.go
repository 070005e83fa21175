// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Supported signing algorithms. HS256 is the default; the secret and
// algorithm are fixed at construction and read-only afterwards.
var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Claims is the decoded token payload. Subject carries the user's email.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// TokenIssuer mints and verifies signed, time-bounded access tokens.
// Tokens are stateless: validity is determined purely by signature and
// expiry, with no server-side session record and no revocation.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenIssuer creates a TokenIssuer. The secret must be non-empty and the
// algorithm one of HS256, HS384, HS512.
func NewTokenIssuer(secret []byte, algorithm string) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token signing secret is required")
	}
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, oops.Code("CONFIG_INVALID").
			With("algorithm", algorithm).
			Errorf("unsupported signing algorithm")
	}
	return &TokenIssuer{secret: secret, method: method}, nil
}

// Issue signs a token whose subject is the given identity and whose expiry
// is now + ttl. Returns the opaque token string and the expiry instant.
func (i *TokenIssuer) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(i.method, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry and returns the decoded claims.
// Malformed tokens, bad signatures, expired tokens, and tokens without a
// subject all fail with the same AUTH_INVALID_CREDENTIALS error; the real
// reason is recorded in the error context for logs, never for callers.
func (i *TokenIssuer) Verify(tokenString string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, invalidToken("parse", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return Claims{}, invalidToken("claims", nil)
	}
	if claims.Subject == "" {
		return Claims{}, invalidToken("missing subject", nil)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, invalidToken("missing expiry", nil)
	}

	return Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// invalidToken records the real failure in the error context for logs while
// keeping the caller-facing message byte-identical across every failure mode.
// Wrapping the cause would leak it through Error().
func invalidToken(reason string, err error) error {
	builder := oops.Code(CodeInvalidCredentials).With("reason", reason)
	if err != nil {
		builder = builder.With("cause", err.Error())
	}
	return builder.Errorf(invalidCredentialsMessage)
}
