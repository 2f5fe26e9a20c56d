// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

// loggingTransport logs requests sent to Vault at
// debug level. Auth tokens are logged as hashes.
type loggingTransport struct {
	http.RoundTripper
	log *slog.Logger
}

func (lt *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := lt.RoundTripper
	if rt == nil {
		rt = http.DefaultTransport
	}

	start := time.Now()
	resp, err := rt.RoundTrip(req)
	if req.URL.Path == "/v1/sys/health" {
		return resp, err
	}

	attrs := []any{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("auth", obfuscateToken(req.Header.Get(vaultapi.AuthHeaderName))),
		slog.Duration("duration", time.Since(start)),
	}
	switch {
	case err != nil:
		lt.log.Debug("vault: HTTP error", append(attrs, slog.String("error", err.Error()))...)
	case resp.StatusCode >= 300:
		lt.log.Debug("vault: HTTP error response", append(attrs, slog.String("status", resp.Status))...)
	default:
		lt.log.Debug("vault: HTTP response", append(attrs, slog.String("status", resp.Status))...)
	}
	return resp, err
}

func obfuscateToken(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:16]) + " (hashed)"
}
