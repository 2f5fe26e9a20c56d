// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"net"
	"os"
	"strings"
)

// Environment variable used by the keychain CLI.
const (
	// EnvServer is the server endpoint the client uses. If not set,
	// clients will use 'http://127.0.0.1:7373'.
	EnvServer = "KEYCHAIN_SERVER"

	// EnvAPIToken is used by the client to authenticate to the server.
	EnvAPIToken = "KEYCHAIN_API_TOKEN"

	// EnvCAPath is a file or directory containing the CA
	// certificates used to verify the server certificate.
	EnvCAPath = "KEYCHAIN_CA_PATH"

	// EnvConfig is the path of the server config file.
	EnvConfig = "KEYCHAIN_CONFIG"
)

// Env retrieves the value of the environment variable named by the key.
// It returns the value, which will be empty if the variable is not present.
func Env(key string) string { return os.Getenv(key) }

// EndpointFromEnv returns the server endpoint from EnvServer.
// An endpoint without scheme is treated as plain HTTP endpoint.
func EndpointFromEnv() (string, error) {
	endpoint, ok := os.LookupEnv(EnvServer)
	if !ok || strings.TrimSpace(endpoint) == "" {
		return "http://127.0.0.1:7373", nil
	}
	return ParseEndpoint(endpoint)
}

// ParseEndpoint parses s as HOST:PORT with an optional
// http:// or https:// scheme prefix.
func ParseEndpoint(s string) (string, error) {
	scheme, endpoint := "http://", strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		scheme, endpoint = "https://", strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = strings.TrimPrefix(endpoint, "http://")
	}
	host, port, err := net.SplitHostPort(strings.TrimSuffix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server endpoint '%s': %v", s, err)
	}
	return scheme + net.JoinHostPort(host, port), nil
}
