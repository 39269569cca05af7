// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bigpot/playerd/internal/auth"
	"github.com/bigpot/playerd/internal/auth/mocks"
	"github.com/bigpot/playerd/pkg/errutil"
)

func newTestPlayer() *auth.Player {
	now := time.Now().UTC().Truncate(time.Second)
	return &auth.Player{
		ID:           ulid.Make(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func authHeader(token string) http.Header {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	return headers
}

func TestNewService_NilDependencies(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name    string
		players auth.PlayerRepository
		hasher  auth.PasswordHasher
		codec   *auth.TokenCodec
	}{
		{"nil player repository", nil, mocks.NewMockPasswordHasher(t), codec},
		{"nil password hasher", mocks.NewMockPlayerRepository(t), nil, codec},
		{"nil token codec", mocks.NewMockPlayerRepository(t), mocks.NewMockPasswordHasher(t), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.players, tt.hasher, tt.codec, nil)
			require.Error(t, err)
			assert.Nil(t, svc)
		})
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials mint a decodable token", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, hasher, codec, nil)
		require.NoError(t, err)

		player := newTestPlayer()
		players.On("GetByUsername", ctx, "alice").Return(player, nil)
		hasher.On("Verify", "Secr3t!pass", player.PasswordHash).Return(true, nil)

		token, err := svc.Login(ctx, "alice", "Secr3t!pass")
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, player.ID.String(), claims.Subject)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("unknown user still verifies against dummy digest", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(players, hasher, newTestCodec(t), nil)
		require.NoError(t, err)

		players.On("GetByUsername", ctx, "nobody").Return(nil, auth.ErrNotFound)
		hasher.On("Verify", "password", mock.AnythingOfType("string")).Return(false, nil)

		token, err := svc.Login(ctx, "nobody", "password")
		require.Error(t, err)
		assert.Empty(t, token)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
		hasher.AssertCalled(t, "Verify", "password", mock.AnythingOfType("string"))
	})

	t.Run("storage error is indistinguishable from bad credentials", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(players, hasher, newTestCodec(t), nil)
		require.NoError(t, err)

		players.On("GetByUsername", ctx, "alice").Return(nil, errors.New("connection refused"))
		hasher.On("Verify", "password", mock.AnythingOfType("string")).Return(false, nil)

		_, err = svc.Login(ctx, "alice", "password")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(players, hasher, newTestCodec(t), nil)
		require.NoError(t, err)

		player := newTestPlayer()
		players.On("GetByUsername", ctx, "alice").Return(player, nil)
		hasher.On("Verify", "wrong", player.PasswordHash).Return(false, nil)

		_, err = svc.Login(ctx, "alice", "wrong")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unreadable stored digest maps to invalid credentials", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(players, hasher, newTestCodec(t), nil)
		require.NoError(t, err)

		player := newTestPlayer()
		players.On("GetByUsername", ctx, "alice").Return(player, nil)
		hasher.On("Verify", "password", player.PasswordHash).Return(false, auth.ErrMalformedDigest)

		_, err = svc.Login(ctx, "alice", "password")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates player and provisions wallet with minted token", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		wallet := mocks.NewMockWalletProvisioner(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, hasher, codec, wallet)
		require.NoError(t, err)

		hasher.On("Hash", "Secr3t!pass").Return("$argon2id$digest", nil)
		players.On("Create", ctx, mock.AnythingOfType("*auth.Player")).Return(nil)
		wallet.On("Provision", ctx, mock.AnythingOfType("string")).Return(nil)

		token, err := svc.Register(ctx, "alice", "alice@example.com", "Secr3t!pass")
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)

		created := players.Calls[0].Arguments.Get(1).(*auth.Player)
		assert.Equal(t, "$argon2id$digest", created.PasswordHash)
		assert.Equal(t, created.ID.String(), claims.Subject)
		wallet.AssertCalled(t, "Provision", ctx, token)
	})

	t.Run("hashing failure is a server fault", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(players, hasher, newTestCodec(t), nil)
		require.NoError(t, err)

		hasher.On("Hash", "password").Return("", errors.New("entropy exhausted"))

		token, err := svc.Register(ctx, "alice", "alice@example.com", "password")
		require.Error(t, err)
		assert.Empty(t, token)
		errutil.AssertErrorCode(t, err, "AUTH_HASH_FAILED")
		assert.NotErrorIs(t, err, auth.ErrDuplicate)
	})

	t.Run("any insert failure is a conflict", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(players, hasher, newTestCodec(t), nil)
		require.NoError(t, err)

		hasher.On("Hash", "password").Return("$argon2id$digest", nil)
		players.On("Create", ctx, mock.AnythingOfType("*auth.Player")).Return(auth.ErrDuplicate)

		_, err = svc.Register(ctx, "alice", "alice@example.com", "password")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrDuplicate)
		errutil.AssertErrorCode(t, err, "PLAYER_CONFLICT")
	})

	t.Run("wallet failure keeps the account and the token", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		wallet := mocks.NewMockWalletProvisioner(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, hasher, codec, wallet)
		require.NoError(t, err)

		hasher.On("Hash", "password").Return("$argon2id$digest", nil)
		players.On("Create", ctx, mock.AnythingOfType("*auth.Player")).Return(nil)
		wallet.On("Provision", ctx, mock.AnythingOfType("string")).Return(errors.New("currency service down"))

		token, err := svc.Register(ctx, "alice", "alice@example.com", "password")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrWalletProvisioning)

		// The token is still valid and decodable.
		require.NotEmpty(t, token)
		_, decodeErr := codec.Decode(token)
		assert.NoError(t, decodeErr)
	})

	t.Run("nil wallet skips provisioning", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(players, hasher, newTestCodec(t), nil)
		require.NoError(t, err)

		hasher.On("Hash", "password").Return("$argon2id$digest", nil)
		players.On("Create", ctx, mock.AnythingOfType("*auth.Player")).Return(nil)

		token, err := svc.Register(ctx, "alice", "alice@example.com", "password")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})
}

func TestService_FetchByToken(t *testing.T) {
	ctx := context.Background()

	t.Run("returns safe projection for a live token", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, mocks.NewMockPasswordHasher(t), codec, nil)
		require.NoError(t, err)

		player := newTestPlayer()
		token, err := codec.Encode(player.Identity())
		require.NoError(t, err)

		players.On("GetByIdentity", ctx, player.Identity()).Return(player, nil)

		safe, err := svc.FetchByToken(ctx, authHeader(token))
		require.NoError(t, err)
		assert.Equal(t, player.ID.String(), safe.ID)
		assert.Equal(t, player.Username, safe.Username)
		assert.Equal(t, player.Email, safe.Email)
		assert.Equal(t, player.CreatedAt, safe.CreatedAt)
	})

	t.Run("missing header folds into token rejection", func(t *testing.T) {
		svc, err := auth.NewService(mocks.NewMockPlayerRepository(t), mocks.NewMockPasswordHasher(t), newTestCodec(t), nil)
		require.NoError(t, err)

		_, err = svc.FetchByToken(ctx, http.Header{})
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrTokenRejected)
		errutil.AssertErrorCode(t, err, "AUTH_TOKEN_REJECTED")
	})

	t.Run("undecodable token folds into token rejection", func(t *testing.T) {
		svc, err := auth.NewService(mocks.NewMockPlayerRepository(t), mocks.NewMockPasswordHasher(t), newTestCodec(t), nil)
		require.NoError(t, err)

		_, err = svc.FetchByToken(ctx, authHeader("not.a.jwt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrTokenRejected)
	})

	t.Run("claims no longer matching storage yield not found", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, mocks.NewMockPasswordHasher(t), codec, nil)
		require.NoError(t, err)

		player := newTestPlayer()
		token, err := codec.Encode(player.Identity())
		require.NoError(t, err)

		players.On("GetByIdentity", ctx, player.Identity()).Return(nil, auth.ErrNotFound)

		_, err = svc.FetchByToken(ctx, authHeader(token))
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.NotErrorIs(t, err, auth.ErrTokenRejected)
	})

	t.Run("storage fault is not a not-found", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, mocks.NewMockPasswordHasher(t), codec, nil)
		require.NoError(t, err)

		player := newTestPlayer()
		token, err := codec.Encode(player.Identity())
		require.NoError(t, err)

		players.On("GetByIdentity", ctx, player.Identity()).Return(nil, errors.New("connection refused"))

		_, err = svc.FetchByToken(ctx, authHeader(token))
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestService_DeleteByToken(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the player matching the claims", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, mocks.NewMockPasswordHasher(t), codec, nil)
		require.NoError(t, err)

		player := newTestPlayer()
		token, err := codec.Encode(player.Identity())
		require.NoError(t, err)

		players.On("DeleteByIdentity", ctx, player.Identity()).Return(nil)

		err = svc.DeleteByToken(ctx, authHeader(token))
		require.NoError(t, err)
	})

	t.Run("nothing matched yields not found", func(t *testing.T) {
		players := mocks.NewMockPlayerRepository(t)
		codec := newTestCodec(t)
		svc, err := auth.NewService(players, mocks.NewMockPasswordHasher(t), codec, nil)
		require.NoError(t, err)

		player := newTestPlayer()
		token, err := codec.Encode(player.Identity())
		require.NoError(t, err)

		players.On("DeleteByIdentity", ctx, player.Identity()).Return(auth.ErrNotFound)

		err = svc.DeleteByToken(ctx, authHeader(token))
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("bad prefix folds into token rejection", func(t *testing.T) {
		svc, err := auth.NewService(mocks.NewMockPlayerRepository(t), mocks.NewMockPasswordHasher(t), newTestCodec(t), nil)
		require.NoError(t, err)

		headers := http.Header{}
		headers.Set("Authorization", "token abc")

		err = svc.DeleteByToken(ctx, headers)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrTokenRejected)
	})
}
