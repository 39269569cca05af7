// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package web

import (
	"regexp"
	"strings"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{4,19}$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&*?+=]{8,30}$`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
	symbolRe   = regexp.MustCompile(`[!@#$%^&*?+=]`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidUsername reports whether a username is acceptable: 5 to 20
// characters, starting with a letter, containing only letters, digits,
// and underscores, with no consecutive underscores.
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username) && !strings.Contains(username, "__")
}

// ValidPassword reports whether a password is acceptable: 8 to 30
// characters from letters, digits, and the symbol set !@#$%^&*?+=,
// with at least one uppercase letter, one lowercase letter, one digit,
// and one symbol.
func ValidPassword(password string) bool {
	return passwordRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		lowerRe.MatchString(password) &&
		digitRe.MatchString(password) &&
		symbolRe.MatchString(password)
}

// ValidEmail reports whether an email address has a plausible shape.
// This is a sanity check, not full RFC 5322 validation.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
