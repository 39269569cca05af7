// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/bigpot/playerd/internal/auth"
	"github.com/bigpot/playerd/internal/observability"
	"github.com/bigpot/playerd/pkg/errutil"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates a player account and returns a fresh token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	switch {
	case !ValidUsername(body.Username):
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid username.")
		return
	case !ValidEmail(body.Email):
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid email address.")
		return
	case !ValidPassword(body.Password):
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid password.")
		return
	}

	token, err := s.svc.Register(r.Context(), body.Username, body.Email, body.Password)
	switch {
	case err == nil:
		s.recordRegistration(observability.OutcomeSuccess)
		writeToken(w, http.StatusCreated, token)

	case errors.Is(err, auth.ErrWalletProvisioning):
		// The account and token are good; the wallet call is the only
		// thing that failed. Surface the token and let operators chase
		// the provisioning failure.
		errutil.LogError(slog.Default(), "wallet provisioning failed after registration", err)
		if s.metrics != nil {
			s.metrics.WalletFailures.Inc()
		}
		s.recordRegistration(observability.OutcomeSuccess)
		writeToken(w, http.StatusCreated, token)

	case errors.Is(err, auth.ErrDuplicate):
		s.recordRegistration(observability.OutcomeConflict)
		writeMessage(w, http.StatusConflict, msgDuplicatePlayer)

	default:
		errutil.LogError(slog.Default(), "registration failed", err)
		s.recordRegistration(observability.OutcomeError)
		if hasCode(err, "AUTH_HASH_FAILED") {
			writeMessage(w, http.StatusInternalServerError, msgHashingFailed)
			return
		}
		writeMessage(w, http.StatusInternalServerError, msgTokenCreation)
	}
}

// handleLogin verifies credentials and returns a fresh token. Every
// failure reads the same to the caller.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequestBody)
		return
	}

	token, err := s.svc.Login(r.Context(), body.Username, body.Password)
	switch {
	case err == nil:
		s.recordLogin(observability.OutcomeSuccess)
		writeToken(w, http.StatusOK, token)

	case errors.Is(err, auth.ErrInvalidCredentials):
		s.recordLogin(observability.OutcomeRejected)
		writeMessage(w, http.StatusUnauthorized, msgAuthnFailed)

	default:
		errutil.LogError(slog.Default(), "login failed", err)
		s.recordLogin(observability.OutcomeError)
		writeMessage(w, http.StatusUnauthorized, msgAuthnFailed)
	}
}

// handleFetch returns the safe projection of the player identified by
// the bearer token.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	player, err := s.svc.FetchByToken(r.Context(), r.Header)
	switch {
	case err == nil:
		s.recordTokenCheck(observability.OutcomeSuccess)
		writeJSON(w, http.StatusOK, player)

	case errors.Is(err, auth.ErrTokenRejected):
		s.recordTokenCheck(observability.OutcomeRejected)
		writeMessage(w, http.StatusUnauthorized, msgTokenAuthFailed)

	case errors.Is(err, auth.ErrNotFound):
		s.recordTokenCheck(observability.OutcomeRejected)
		writeMessage(w, http.StatusNotFound, msgPlayerNotFound)

	default:
		errutil.LogError(slog.Default(), "player lookup failed", err)
		s.recordTokenCheck(observability.OutcomeError)
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
	}
}

// handleDelete removes the player identified by the bearer token.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteByToken(r.Context(), r.Header)
	switch {
	case err == nil:
		s.recordTokenCheck(observability.OutcomeSuccess)
		w.WriteHeader(http.StatusNoContent)

	case errors.Is(err, auth.ErrTokenRejected):
		s.recordTokenCheck(observability.OutcomeRejected)
		writeMessage(w, http.StatusUnauthorized, msgTokenAuthFailed)

	case errors.Is(err, auth.ErrNotFound):
		s.recordTokenCheck(observability.OutcomeRejected)
		writeMessage(w, http.StatusNotFound, msgPlayerNotFound)

	default:
		errutil.LogError(slog.Default(), "player deletion failed", err)
		s.recordTokenCheck(observability.OutcomeError)
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
	}
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordTokenCheck(outcome string) {
	if s.metrics != nil {
		s.metrics.TokenChecksTotal.WithLabelValues(outcome).Inc()
	}
}

// hasCode reports whether err carries the given oops error code.
func hasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}
