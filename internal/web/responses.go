// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// TokenResponse is returned from both registration and login.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse carries a human-readable outcome for everything else.
type MessageResponse struct {
	Message string `json:"message"`
}

// Client-facing messages. Authentication failures are deliberately
// uniform so callers cannot probe which part of a credential was wrong.
const (
	msgAuthnFailed      = "Authentication failed."
	msgTokenAuthFailed  = "Token authentication failed."
	msgTokenCreation    = "Error creating authentication token."
	msgHashingFailed    = "Password could not be hashed."
	msgDuplicatePlayer  = "Username or email already exists."
	msgPlayerNotFound   = "Player could not be found."
	msgBadRequestBody   = "Invalid request body."
	msgInternalError    = "Internal server error."
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response body", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

func writeToken(w http.ResponseWriter, status int, token string) {
	writeJSON(w, status, TokenResponse{Token: token})
}
