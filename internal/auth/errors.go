// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package auth

import "errors"

// Sentinel errors used for branching with errors.Is. The service wraps
// them in oops errors carrying a code and diagnostic context; transport
// layers branch on the sentinel and never forward the detail.
var (
	// ErrNotFound is returned when a requested player does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint on username or email.
	ErrDuplicate = errors.New("already exists")

	// ErrInvalidCredentials covers every login failure an attacker could
	// provoke: unknown username, wrong password, unreadable digest, and
	// storage lookup errors. They are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTokenRejected covers every authenticated-request failure between
	// the Authorization header and the decoded claims: missing header,
	// bad prefix, and any token decode failure.
	ErrTokenRejected = errors.New("token authentication failed")

	// ErrWalletProvisioning reports that the account and token were
	// created but the downstream wallet call failed. The account stays
	// valid; provisioning can be retried out-of-band.
	ErrWalletProvisioning = errors.New("wallet provisioning failed")
)
