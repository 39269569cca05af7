// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenTTL is the validity window of every minted token: exp = iat + 1h.
const TokenTTL = time.Hour

// Decode failure sentinels, one per rejection cause. The service folds
// all of them into ErrTokenRejected before anything leaves the process.
var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrSignatureInvalid  = errors.New("token signature invalid")
	ErrAlgorithmMismatch = errors.New("token algorithm mismatch")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenNotYetValid  = errors.New("token not yet valid")
)

// Claims is the signed content of a bearer token. The registered claims
// serialize as sub/iat/nbf/exp/iss; username and email ride alongside so
// storage can re-check the full identity on every authenticated request.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity is a player identity derived from verified claims. It is
// never built from unverified input; only TokenCodec.Decode output
// reaches this constructor.
type Identity struct {
	ID       ulid.ULID
	Username string
	Email    string
}

// Identity extracts the identity carried by the claims. A subject that
// is not a valid ULID means the token was minted for a different
// deployment or schema and cannot match any stored player.
func (c *Claims) Identity() (Identity, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return Identity{}, oops.Code("TOKEN_BAD_SUBJECT").
			With("subject", c.Subject).
			Wrap(ErrTokenMalformed)
	}
	return Identity{ID: id, Username: c.Username, Email: c.Email}, nil
}

// TokenCodec signs and verifies bearer tokens under a single immutable
// HMAC-SHA256 key. The algorithm is pinned at construction and never
// read from token input, closing algorithm-confusion attacks.
type TokenCodec struct {
	signingKey []byte
	issuer     string
}

// NewTokenCodec creates a TokenCodec. The signing key comes from process
// configuration exactly once at startup; an empty key is a construction
// error so the process never starts accepting traffic without one.
func NewTokenCodec(signingKey []byte, issuer string) (*TokenCodec, error) {
	if len(signingKey) == 0 {
		return nil, oops.Code("TOKEN_KEY_MISSING").Errorf("signing key is required")
	}
	if issuer == "" {
		return nil, oops.Code("TOKEN_ISSUER_MISSING").Errorf("issuer is required")
	}
	return &TokenCodec{signingKey: signingKey, issuer: issuer}, nil
}

// Encode mints a signed token for the identity, valid from now until
// now + TokenTTL, with nbf == iat.
func (c *TokenCodec) Encode(ident Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID.String(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		Username: ident.Username,
		Email:    ident.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", oops.Code("TOKEN_SIGNING_FAILED").
			With("operation", "sign claims").
			Wrap(err)
	}

	return signed, nil
}

// Decode parses and verifies a token string and returns its claims.
// Rejections are classified: structure first, then signature and the
// pinned algorithm, then the temporal bounds. No claim field is trusted
// before the signature checks out.
func (c *TokenCodec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		// Exact algorithm pin: HS384 and friends are mismatches too,
		// not just "none" and the asymmetric families.
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrAlgorithmMismatch
		}
		return c.signingKey, nil
	},
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyDecodeError(err)
	}

	return claims, nil
}

// classifyDecodeError maps golang-jwt parse errors onto the codec's
// sentinels, each wrapped with a distinct code for diagnostics.
func classifyDecodeError(err error) error {
	switch {
	case errors.Is(err, ErrAlgorithmMismatch):
		return oops.Code("TOKEN_ALG_MISMATCH").With("cause", err.Error()).Wrap(ErrAlgorithmMismatch)
	case errors.Is(err, jwt.ErrTokenExpired):
		return oops.Code("TOKEN_EXPIRED").Wrap(ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return oops.Code("TOKEN_NOT_YET_VALID").Wrap(ErrTokenNotYetValid)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return oops.Code("TOKEN_SIGNATURE_INVALID").Wrap(ErrSignatureInvalid)
	default:
		return oops.Code("TOKEN_MALFORMED").With("cause", err.Error()).Wrap(ErrTokenMalformed)
	}
}
