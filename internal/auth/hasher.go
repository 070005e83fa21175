// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// HasherParams are the argon2id cost parameters. Raising Time or Memory makes
// brute forcing proportionally more expensive; the values are embedded in each
// produced hash, so they can be tuned without invalidating stored credentials.
type HasherParams struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8  // parallelism
	SaltLen uint32 // salt length in bytes
	KeyLen  uint32 // digest length in bytes
}

// DefaultHasherParams follows the OWASP argon2id recommendation.
func DefaultHasherParams() HasherParams {
	return HasherParams{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted digest of the password. Two calls with the same
	// input produce different outputs.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the digest.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// when the stored digest itself is unparseable.
	Verify(password, digest string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id in PHC string
// format: $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<digest>.
type Argon2idHasher struct {
	params HasherParams
}

// NewArgon2idHasher creates an Argon2idHasher with the given cost parameters.
// Zero-valued fields fall back to DefaultHasherParams.
func NewArgon2idHasher(params HasherParams) *Argon2idHasher {
	def := DefaultHasherParams()
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Threads == 0 {
		params.Threads = def.Threads
	}
	if params.SaltLen == 0 {
		params.SaltLen = def.SaltLen
	}
	if params.KeyLen == 0 {
		params.KeyLen = def.KeyLen
	}
	return &Argon2idHasher{params: params}
}

// Hash produces a PHC-encoded argon2id digest with a fresh random salt.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify recomputes the digest with the parameters embedded in the stored
// hash and compares in constant time. A mismatch is (false, nil), not an
// error; only an unparseable stored hash produces an error.
func (h *Argon2idHasher) Verify(password, digest string) (bool, error) {
	salt, key, params, err := decodePHC(digest)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt,
		params.Time, params.Memory, params.Threads, params.KeyLen)

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// decodePHC parses a PHC argon2id string into its salt, digest, and cost
// parameters.
func decodePHC(digest string) ([]byte, []byte, HasherParams, error) {
	var params HasherParams

	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").
			Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").
			Errorf("unsupported argon2 version: %d", version)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &threads); err != nil {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").
			Errorf("threads value %d out of range", threads)
	}
	params.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return nil, nil, params, oops.Code("AUTH_INVALID_HASH").
			Errorf("invalid digest length: %d", len(key))
	}
	params.KeyLen = uint32(len(key))

	return salt, key, params, nil
}
