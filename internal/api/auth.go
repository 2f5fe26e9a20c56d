// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/minio/keychain/internal/headers"
)

// Verifier authenticates HTTP requests.
type Verifier interface {
	Verify(*http.Request) error
}

// VerifyFunc is an adapter to allow the use of ordinary
// functions as Verifier.
type VerifyFunc func(*http.Request) error

// Verify calls f(r).
func (f VerifyFunc) Verify(r *http.Request) error { return f(r) }

// InsecureSkipVerify is a Verifier that accepts all requests.
var InsecureSkipVerify Verifier = VerifyFunc(func(*http.Request) error { return nil })

var errUnauthorized = NewError(http.StatusUnauthorized, "not authorized: invalid or missing API token")

// BearerToken returns a Verifier that accepts requests
// with an "Authorization: Bearer <token>" header. If
// token is empty, it returns InsecureSkipVerify.
func BearerToken(token string) Verifier {
	if token == "" {
		return InsecureSkipVerify
	}
	return VerifyFunc(func(r *http.Request) error {
		const Scheme = "Bearer "

		value := r.Header.Get(headers.Authorization)
		if len(value) < len(Scheme) || !strings.EqualFold(value[:len(Scheme)], Scheme) {
			return errUnauthorized
		}
		if subtle.ConstantTimeCompare([]byte(value[len(Scheme):]), []byte(token)) != 1 {
			return errUnauthorized
		}
		return nil
	})
}
