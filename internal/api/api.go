// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package api implements the keychain HTTP API.
//
// The API exposes the four store operations (get, put,
// remove and clear) plus version, status and metrics
// endpoints. Requests and responses are JSON encoded.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/minio/keychain/internal/headers"
)

// API paths exposed by a keychain server.
const (
	PathVersion = "/version"
	PathStatus  = "/v1/status"
	PathMetrics = "/v1/metrics"

	PathGet    = "/v1/get"
	PathPut    = "/v1/put"
	PathRemove = "/v1/remove"
	PathClear  = "/v1/clear"
)

// API describes a keychain server API.
type API struct {
	Method  string        // The HTTP method
	Path    string        // The URI API path
	MaxBody int64         // The max. body size the API accepts
	Timeout time.Duration // The duration after which an API request times out. 0 means no timeout

	// Verify authenticates requests before they are
	// passed to the Handler. If nil, all requests
	// are accepted.
	Verify Verifier

	// Handler implements the API.
	//
	// When invoked by the API's ServeHTTP method, the handler
	// can rely upon:
	//  - the request method matching the API's HTTP method.
	//  - the request path matching the API path.
	//  - the request body being limited to the API's MaxBody size.
	//  - the request timing out after the duration specified for the API.
	Handler http.Handler
}

// ServeHTTP takes an HTTP Request and ResponseWriter and executes the
// API's Handler.
func (a API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != a.Method {
		w.Header().Set(headers.Accept, a.Method)
		Fail(w, NewError(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)))
		return
	}
	if r.URL.Path != a.Path {
		Fail(w, NewError(http.StatusNotImplemented, "not implemented"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxBody)

	if a.Timeout > 0 {
		switch err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(a.Timeout)); {
		case errors.Is(err, http.ErrNotSupported):
			Fail(w, errors.New("internal error: HTTP connection does not accept a timeout"))
			return
		case err != nil:
			Fail(w, fmt.Errorf("internal error: %v", err))
			return
		}
	}
	if a.Verify != nil {
		if err := a.Verify.Verify(r); err != nil {
			Fail(w, err)
			return
		}
	}
	a.Handler.ServeHTTP(w, r)
}
