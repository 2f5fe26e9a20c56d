// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/metric"
)

// RouterConfig is a structure containing the
// API configuration for a keychain server.
type RouterConfig struct {
	// Store is the keychain store. If nil, the store
	// failed to open and the store APIs are not
	// installed.
	Store *keychain.Store

	Metrics *metric.Metrics

	// Verify authenticates requests to all APIs
	// except the version API.
	Verify Verifier

	ErrorLog *slog.Logger
}

// NewRouter returns a new API Router for a keychain
// server with the given configuration.
func NewRouter(config *RouterConfig) *Router {
	if config.Metrics == nil {
		config.Metrics = metric.New()
	}
	if config.Verify == nil {
		config.Verify = InsecureSkipVerify
	}
	if config.ErrorLog == nil {
		config.ErrorLog = slog.Default()
	}

	r := &Router{
		handler: http.NewServeMux(),
	}
	r.api = append(r.api, version(config))
	r.api = append(r.api, status(config))
	r.api = append(r.api, metrics(config))

	if config.Store != nil {
		r.api = append(r.api, get(config))
		r.api = append(r.api, put(config))
		r.api = append(r.api, remove(config))
		r.api = append(r.api, clearAll(config))
	}

	for _, a := range r.api {
		r.handler.Handle(a.Path, a)
	}
	r.handler.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NewResponseController(w).SetWriteDeadline(time.Now().Add(10 * time.Second))
		Fail(w, NewError(http.StatusNotImplemented, "not implemented"))
	}))
	return r
}

// Router is an HTTP handler that implements the keychain API.
//
// It routes incoming HTTP requests and invokes the
// corresponding API handlers.
type Router struct {
	handler *http.ServeMux
	api     []API
}

// ServeHTTP dispatches the request to the API handler whose
// pattern most matches the request URL.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !strings.HasPrefix(req.URL.Path, "/") { // Ensure URL paths start with a '/'
		req.URL.Path = "/" + req.URL.Path
	}
	r.handler.ServeHTTP(w, req)
}

// API returns a list of APIs provided by the Router.
func (r *Router) API() []API { return r.api }
