// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token is the login response shape.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service orchestrates registration, login, and current-user resolution.
type Service struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// NewService creates a Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer, tokenTTL time.Duration) (*Service, error) {
	return NewServiceWithLogger(users, hasher, tokens, tokenTTL, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if tokenTTL <= 0 {
		return nil, oops.With("ttl", tokenTTL).Errorf("token TTL must be positive")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}, nil
}

// Register creates a new active user. Check order: email uniqueness, username
// uniqueness, password policy, email format. Nothing is persisted unless
// every check passes.
func (s *Service) Register(ctx context.Context, email, username, password string) (*User, error) {
	return s.register(ctx, email, username, password, false)
}

// RegisterSuperuser creates a new active user with superuser rights. Used by
// the admin CLI, not exposed over HTTP.
func (s *Service) RegisterSuperuser(ctx context.Context, email, username, password string) (*User, error) {
	return s.register(ctx, email, username, password, true)
}

func (s *Service) register(ctx context.Context, email, username, password string, superuser bool) (*User, error) {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check email exists").
			Wrap(err)
	}
	if taken {
		return nil, oops.Code(CodeEmailTaken).
			With("email", email).
			Errorf("Email %s already registered", email)
	}

	taken, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check username exists").
			Wrap(err)
	}
	if taken {
		return nil, oops.Code(CodeUsernameTaken).
			With("username", username).
			Errorf("Username %s already registered", username)
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, username, hash)
	if err != nil {
		return nil, err
	}
	user.IsSuperuser = superuser

	// Two racing registrations can both pass the exists checks; the unique
	// index resolves the race and the repository reports the loser with the
	// same AUTH_EMAIL_TAKEN / AUTH_USERNAME_TAKEN codes as the pre-checks.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		"user_id", user.ID.String(),
		"username", user.Username,
		"superuser", superuser,
	)
	return user, nil
}

// Login verifies the credentials and mints an access token whose subject is
// the user's email. An unknown email and a wrong password produce the
// identical error; a dummy hash is verified when the email is unknown so the
// two cases also take comparable time.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, lookupErr := s.users.FindByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return Token{}, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "find user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return Token{}, s.invalidCredentials("unknown email")
		}
		return Token{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !userExists || !valid {
		return Token{}, s.invalidCredentials("bad credentials")
	}

	accessToken, expiresAt, err := s.tokens.Issue(user.Email, s.tokenTTL)
	if err != nil {
		return Token{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.Info("user logged in", "user_id", user.ID.String())
	return Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveCurrentUser verifies the token and resolves its subject to an
// active user. Every failure mode collapses into AUTH_INVALID_CREDENTIALS.
func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.invalidCredentials("subject not resolvable")
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "find user by token subject").
			Wrap(err)
	}
	return user, nil
}

// DeleteUser permanently deletes the user and, via the schema's cascade, all
// of their todos.
func (s *Service) DeleteUser(ctx context.Context, id ulid.ULID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).
				With("user_id", id.String()).
				Errorf("User %s not found", id)
		}
		return oops.Code("AUTH_DELETE_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}
	s.logger.Info("user deleted", "user_id", id.String())
	return nil
}

// Deactivate flips is_active to false for the user, hiding it from lookups
// without releasing its email or username.
func (s *Service) Deactivate(ctx context.Context, id ulid.ULID) error {
	if err := s.users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeNotFound).
				With("user_id", id.String()).
				Errorf("User %s not found", id)
		}
		return oops.Code("AUTH_DEACTIVATE_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}
	s.logger.Info("user deactivated", "user_id", id.String())
	return nil
}

func (s *Service) invalidCredentials(reason string) error {
	return oops.Code(CodeInvalidCredentials).
		With("reason", reason).
		Errorf(invalidCredentialsMessage)
}
