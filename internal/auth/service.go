// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package auth

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyDigest is verified against when a username lookup misses, so the
// not-found path costs the same as a real verification and usernames
// cannot be enumerated by timing. It is a fake digest that will never
// match any password.
//
//nolint:gosec // G101: intentionally fake digest for timing uniformity, not a credential.
const dummyDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// WalletProvisioner provisions a wallet for a freshly registered player,
// authenticating with the player's own bearer token.
type WalletProvisioner interface {
	Provision(ctx context.Context, token string) error
}

// Service composes the hasher, token codec, and player storage into the
// registration, login, and authenticated lookup/deletion flows. It holds
// no per-request state; every flow is independent.
type Service struct {
	players PlayerRepository
	hasher  PasswordHasher
	codec   *TokenCodec
	wallet  WalletProvisioner

	// hashGate bounds concurrent argon2 derivations. Each costs 64 MiB;
	// an unbounded burst of logins would stall unrelated requests.
	hashGate chan struct{}
}

// NewService creates a Service. The wallet provisioner may be nil, in
// which case registration skips provisioning.
func NewService(players PlayerRepository, hasher PasswordHasher, codec *TokenCodec, wallet WalletProvisioner) (*Service, error) {
	if players == nil {
		return nil, oops.Errorf("player repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Errorf("token codec is required")
	}

	return &Service{
		players:  players,
		hasher:   hasher,
		codec:    codec,
		wallet:   wallet,
		hashGate: make(chan struct{}, max(1, runtime.NumCPU())),
	}, nil
}

// Login verifies the credentials and mints a bearer token. Every
// attacker-reachable failure returns an error wrapping
// ErrInvalidCredentials; only a signing fault is reported distinctly.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if err := s.acquireHashSlot(ctx); err != nil {
		return "", err
	}
	defer s.releaseHashSlot()

	player, lookupErr := s.players.GetByUsername(ctx, username)

	// An unknown username and a storage fault both verify against the
	// dummy digest: same outcome, comparable cost.
	targetDigest := dummyDigest
	if lookupErr == nil {
		targetDigest = player.PasswordHash
	}

	match, verifyErr := s.hasher.Verify(password, targetDigest)

	if lookupErr != nil {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").
			With("cause", lookupErr.Error()).
			Wrap(ErrInvalidCredentials)
	}
	if verifyErr != nil || !match {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").
			With("username", username).
			Wrap(ErrInvalidCredentials)
	}

	token, err := s.codec.Encode(player.Identity())
	if err != nil {
		return "", oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "encode login token").
			Wrap(err)
	}

	return token, nil
}

// Register creates a player account and mints its first bearer token.
// Field formats are the transport layer's concern; this method assumes
// they already passed. On wallet provisioning failure the account and
// token stay valid and the returned error wraps ErrWalletProvisioning so
// the caller can retry provisioning out-of-band.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, error) {
	if err := s.acquireHashSlot(ctx); err != nil {
		return "", err
	}
	digest, err := s.hasher.Hash(password)
	s.releaseHashSlot()
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	now := time.Now()
	player := &Player{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Storage does not distinguish causes to this layer; any insert
	// failure surfaces as a conflict.
	if err := s.players.Create(ctx, player); err != nil {
		return "", oops.Code("PLAYER_CONFLICT").
			With("username", username).
			With("cause", err.Error()).
			Wrap(ErrDuplicate)
	}

	token, err := s.codec.Encode(player.Identity())
	if err != nil {
		return "", oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "encode registration token").
			Wrap(err)
	}

	if s.wallet != nil {
		if err := s.wallet.Provision(ctx, token); err != nil {
			return token, oops.Code("WALLET_PROVISION_FAILED").
				With("player_id", player.ID.String()).
				With("cause", err.Error()).
				Wrap(ErrWalletProvisioning)
		}
	}

	return token, nil
}

// FetchByToken authenticates the request headers and returns the
// non-sensitive projection of the matching player.
func (s *Service) FetchByToken(ctx context.Context, headers http.Header) (SafePlayer, error) {
	ident, err := s.identityFromHeaders(headers)
	if err != nil {
		return SafePlayer{}, err
	}

	player, err := s.players.GetByIdentity(ctx, ident)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SafePlayer{}, oops.Code("PLAYER_NOT_FOUND").Wrap(ErrNotFound)
		}
		return SafePlayer{}, oops.Code("PLAYER_LOOKUP_FAILED").
			With("operation", "get player by identity").
			Wrap(err)
	}

	return player.Safe(), nil
}

// DeleteByToken authenticates the request headers and deletes the
// matching player account.
func (s *Service) DeleteByToken(ctx context.Context, headers http.Header) error {
	ident, err := s.identityFromHeaders(headers)
	if err != nil {
		return err
	}

	if err := s.players.DeleteByIdentity(ctx, ident); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("PLAYER_NOT_FOUND").Wrap(ErrNotFound)
		}
		return oops.Code("PLAYER_DELETE_FAILED").
			With("operation", "delete player by identity").
			Wrap(err)
	}

	return nil
}

// identityFromHeaders runs the extract-decode chain. Every failure in it
// folds into ErrTokenRejected; the precise cause stays in the error
// context for server-side logs only.
func (s *Service) identityFromHeaders(headers http.Header) (Identity, error) {
	raw, err := ExtractBearer(headers)
	if err != nil {
		return Identity{}, oops.Code("AUTH_TOKEN_REJECTED").
			With("stage", "extract").
			With("cause", err.Error()).
			Wrap(ErrTokenRejected)
	}

	claims, err := s.codec.Decode(raw)
	if err != nil {
		return Identity{}, oops.Code("AUTH_TOKEN_REJECTED").
			With("stage", "decode").
			With("cause", err.Error()).
			Wrap(ErrTokenRejected)
	}

	ident, err := claims.Identity()
	if err != nil {
		return Identity{}, oops.Code("AUTH_TOKEN_REJECTED").
			With("stage", "identity").
			With("cause", err.Error()).
			Wrap(ErrTokenRejected)
	}

	return ident, nil
}

func (s *Service) acquireHashSlot(ctx context.Context) error {
	select {
	case s.hashGate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return oops.Code("AUTH_CANCELLED").Wrap(ctx.Err())
	}
}

func (s *Service) releaseHashSlot() {
	<-s.hashGate
}
