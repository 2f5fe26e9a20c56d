// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package vault

import (
	"log/slog"
	"time"
)

// Default engine paths.
const (
	// EngineTransit is the default transit secret engine path.
	EngineTransit = "transit"

	// EngineAppRole is the default AppRole authentication
	// engine path.
	EngineAppRole = "approle"

	// EngineKubernetes is the default Kubernetes
	// authentication engine path.
	EngineKubernetes = "kubernetes"
)

// KeyType is the type of the transit key that holds
// the key pair.
const KeyType = "rsa-2048"

// AppRole contains credentials for the Vault AppRole
// authentication method.
//
// Ref: https://developer.hashicorp.com/vault/api-docs/auth/approle
type AppRole struct {
	// Engine is the authentication engine path.
	// If empty, defaults to EngineAppRole.
	Engine string

	// Namespace is the Vault namespace used for
	// authentication. If empty, the provider namespace
	// is used. A single "/" refers to the root namespace.
	Namespace string

	ID     string // The AppRole role ID
	Secret string // The AppRole secret ID
}

// Clone returns a copy of the AppRole auth.
func (a *AppRole) Clone() *AppRole {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// Kubernetes contains credentials for the Vault Kubernetes
// authentication method.
//
// Ref: https://developer.hashicorp.com/vault/api-docs/auth/kubernetes
type Kubernetes struct {
	// Engine is the authentication engine path.
	// If empty, defaults to EngineKubernetes.
	Engine string

	// Namespace is the Vault namespace used for
	// authentication. If empty, the provider namespace
	// is used. A single "/" refers to the root namespace.
	Namespace string

	// Role is the Kubernetes auth role.
	Role string

	// JWT is the service account token or a path
	// to a file containing it.
	JWT string
}

// Clone returns a copy of the Kubernetes auth.
func (k *Kubernetes) Clone() *Kubernetes {
	if k == nil {
		return nil
	}
	clone := *k
	return &clone
}

// Config is a structure containing the configuration
// for connecting to a Hashicorp Vault server.
type Config struct {
	// Endpoint is the HTTP Vault server endpoint.
	Endpoint string

	// Namespace is the Vault namespace. If not empty, the
	// client sends it as X-Vault-Namespace header.
	Namespace string

	// Engine is the path of the transit engine.
	// If empty, defaults to EngineTransit.
	Engine string

	// KeyName is the name of the transit key holding
	// the key pair.
	KeyName string

	// Token is a static Vault token. It is only used
	// when no other authentication method is configured.
	Token string

	// AppRole contains the AppRole credentials.
	AppRole *AppRole

	// K8S contains the Kubernetes credentials.
	K8S *Kubernetes

	// StatusPingAfter is the interval in which the
	// provider checks whether Vault is sealed.
	// If zero, defaults to 15s.
	StatusPingAfter time.Duration

	// Paths to the mTLS client key and certificate.
	PrivateKey  string
	Certificate string

	// CAPath is a file or directory containing the root
	// CA certificates used to verify the Vault server
	// certificate. If empty, the system root CAs are used.
	CAPath string

	// ErrorLog is used to log Vault errors and events.
	// If nil, slog.Default is used.
	ErrorLog *slog.Logger
}

// Clone returns a shallow copy of c or nil if c is nil.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.AppRole = c.AppRole.Clone()
	clone.K8S = c.K8S.Clone()
	return &clone
}
