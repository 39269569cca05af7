// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

// Package postgres implements auth repositories backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/bigpot/playerd/internal/auth"
)

// DB is the subset of pgxpool.Pool the repository needs. Declared as an
// interface so tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PlayerRepository implements auth.PlayerRepository using PostgreSQL.
type PlayerRepository struct {
	db DB
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(db DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create stores a new player. A unique constraint violation on username
// or email surfaces as auth.ErrDuplicate.
func (r *PlayerRepository) Create(ctx context.Context, player *auth.Player) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO players (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		player.ID.String(),
		player.Username,
		player.Email,
		player.PasswordHash,
		player.CreatedAt,
		player.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("PLAYER_DUPLICATE").
				With("username", player.Username).
				With("constraint", pgErr.ConstraintName).
				Wrap(auth.ErrDuplicate)
		}
		return oops.Code("PLAYER_CREATE_FAILED").
			With("operation", "insert player").
			With("username", player.Username).
			Wrap(err)
	}
	return nil
}

// GetByUsername retrieves a player by username, case-insensitive.
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*auth.Player, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM players
		WHERE LOWER(username) = LOWER($1)
	`, username)

	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_BY_USERNAME_FAILED").
			With("operation", "get player by username").
			With("username", username).
			Wrap(err)
	}
	return player, nil
}

// GetByIdentity retrieves the player matching id, username, and email
// together. Username and email match exactly here, so a record renamed
// since the token was minted is a miss.
func (r *PlayerRepository) GetByIdentity(ctx context.Context, ident auth.Identity) (*auth.Player, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM players
		WHERE id = $1 AND username = $2 AND email = $3
	`, ident.ID.String(), ident.Username, ident.Email)

	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").
			With("id", ident.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_BY_IDENTITY_FAILED").
			With("operation", "get player by identity").
			With("id", ident.ID.String()).
			Wrap(err)
	}
	return player, nil
}

// DeleteByIdentity removes the player matching the full identity triple.
func (r *PlayerRepository) DeleteByIdentity(ctx context.Context, ident auth.Identity) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM players
		WHERE id = $1 AND username = $2 AND email = $3
	`, ident.ID.String(), ident.Username, ident.Email)
	if err != nil {
		return oops.Code("PLAYER_DELETE_FAILED").
			With("operation", "delete player by identity").
			With("id", ident.ID.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PLAYER_NOT_FOUND").
			With("id", ident.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanPlayer reads one player row.
func scanPlayer(row pgx.Row) (*auth.Player, error) {
	var p auth.Player
	var idStr string

	if err := row.Scan(&idStr, &p.Username, &p.Email, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PLAYER_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}
	p.ID = id

	return &p, nil
}
