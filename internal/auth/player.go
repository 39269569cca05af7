// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Player represents a player account row. PasswordHash is sensitive and
// must never leave the process; hand SafePlayer to anything that
// serializes.
type Player struct {
	ID           ulid.ULID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafePlayer is the client-facing projection of a Player. It carries no
// credential material.
type SafePlayer struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Safe returns the non-sensitive projection of the player.
func (p *Player) Safe() SafePlayer {
	return SafePlayer{
		ID:        p.ID.String(),
		Username:  p.Username,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

// Identity returns the player's identity triple.
func (p *Player) Identity() Identity {
	return Identity{ID: p.ID, Username: p.Username, Email: p.Email}
}

// PlayerRepository manages player persistence.
type PlayerRepository interface {
	// Create stores a new player. Returns an error wrapping ErrDuplicate
	// when the username or email is already taken.
	Create(ctx context.Context, player *Player) error

	// GetByUsername retrieves a player by username, case-insensitive
	// exact match. Returns an error wrapping ErrNotFound on miss.
	GetByUsername(ctx context.Context, username string) (*Player, error)

	// GetByIdentity retrieves the player whose id, username, and email
	// all match the identity. A record whose username or email has
	// changed since the identity was minted is a miss; this is how
	// stale tokens die without a revocation list.
	GetByIdentity(ctx context.Context, ident Identity) (*Player, error)

	// DeleteByIdentity removes the player matching the full identity
	// triple. Returns an error wrapping ErrNotFound when nothing
	// matched.
	DeleteByIdentity(ctx context.Context, ident Identity) error
}
