// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

// Package auth implements the credential and token engine for playerd:
// argon2id password digests, HMAC-signed bearer tokens, Authorization
// header extraction, and the service that composes them with player
// storage for registration, login, and authenticated lookup/deletion.
package auth
