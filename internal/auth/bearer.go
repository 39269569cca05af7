// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// bearerPrefix is matched case-sensitively, one space, per RFC 6750's
// common form. "bearer x" is rejected; "Bearer  x" (two spaces) passes
// the prefix check and yields " x", which fails later at decode.
const bearerPrefix = "Bearer "

// Bearer extraction sentinels. The service folds all three into
// ErrTokenRejected so a caller cannot learn which header check failed.
var (
	ErrHeaderMissing   = errors.New("authorization header missing")
	ErrHeaderMalformed = errors.New("authorization header malformed")
	ErrPrefixMissing   = errors.New("bearer prefix missing")
)

// ExtractBearer pulls the bearer token out of a request header set.
// The remainder after the prefix is returned verbatim; an empty
// remainder is a valid extraction and fails later, at decode.
func ExtractBearer(headers http.Header) (string, error) {
	values, ok := headers[http.CanonicalHeaderKey("Authorization")]
	if !ok || len(values) == 0 {
		return "", oops.Code("AUTH_HEADER_MISSING").Wrap(ErrHeaderMissing)
	}

	value := values[0]
	if !isVisibleASCII(value) {
		return "", oops.Code("AUTH_HEADER_MALFORMED").Wrap(ErrHeaderMalformed)
	}

	token, found := strings.CutPrefix(value, bearerPrefix)
	if !found {
		return "", oops.Code("AUTH_PREFIX_MISSING").Wrap(ErrPrefixMissing)
	}

	return token, nil
}

// isVisibleASCII reports whether s contains only printable ASCII bytes.
// Header values carrying control bytes or non-ASCII octets cannot hold a
// token and are rejected before prefix matching.
func isVisibleASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
