// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters, fixed for every digest this service mints.
// Verification re-reads the parameters from the stored digest, so these
// can be raised later without invalidating existing accounts.
const (
	digestTime    = 1
	digestMemory  = 64 * 1024 // KiB
	digestThreads = 4
	digestSaltLen = 16
	digestKeyLen  = 32
)

// ErrMalformedDigest is returned when a stored digest cannot be parsed
// or declares an algorithm other than argon2id.
var ErrMalformedDigest = errors.New("malformed password digest")

// PasswordHasher produces and checks salted password digests.
type PasswordHasher interface {
	// Hash derives a PHC-encoded digest from password under a fresh
	// random salt. Any byte string is hashable, including empty.
	Hash(password string) (string, error)

	// Verify reports whether password matches the encoded digest.
	// Returns an error only when the digest itself is unreadable.
	Verify(password, digest string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// digestParams are the cost parameters carried inside a PHC digest string.
type digestParams struct {
	version int
	memory  uint32
	time    uint32
	threads uint32
}

// Hash derives an argon2id digest and encodes it in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, digestSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("operation", "generate salt").
			Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, digestTime, digestMemory, digestThreads, digestKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		digestMemory,
		digestTime,
		digestThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify re-derives the key using the parameters and salt stored in the
// digest and compares in constant time. A mismatch is (false, nil); an
// unreadable digest is an error wrapping ErrMalformedDigest.
func (h *Argon2idHasher) Verify(password, digest string) (bool, error) {
	params, salt, storedKey, err := parseDigest(digest)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, uint8(params.threads), uint32(len(storedKey)))

	return subtle.ConstantTimeCompare(computed, storedKey) == 1, nil
}

// parseDigest splits a PHC-encoded argon2id digest into its parts.
func parseDigest(digest string) (digestParams, []byte, []byte, error) {
	var params digestParams

	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("reason", "expected 6 segments").
			Wrap(ErrMalformedDigest)
	}

	if parts[1] != "argon2id" {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("algorithm", parts[1]).
			Wrap(ErrMalformedDigest)
	}

	if _, err := fmt.Sscanf(parts[2], "v=%d", &params.version); err != nil {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("reason", "unreadable version").
			Wrap(ErrMalformedDigest)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("reason", "unreadable cost parameters").
			Wrap(ErrMalformedDigest)
	}
	// Threads must fit uint8 for the argon2 API.
	if params.threads == 0 || params.threads > 255 {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("threads", params.threads).
			Wrap(ErrMalformedDigest)
	}
	// The argon2 API requires at least one pass.
	if params.time == 0 {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("time", params.time).
			Wrap(ErrMalformedDigest)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("reason", "unreadable salt").
			Wrap(ErrMalformedDigest)
	}

	storedKey, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("reason", "unreadable key").
			Wrap(ErrMalformedDigest)
	}
	if len(storedKey) == 0 || len(storedKey) > 1<<30 {
		return params, nil, nil, oops.Code("AUTH_MALFORMED_DIGEST").
			With("key_len", len(storedKey)).
			Wrap(ErrMalformedDigest)
	}

	return params, salt, storedKey, nil
}
