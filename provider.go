// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain

import (
	"context"
	"time"
)

const (
	// WrappedKeyName is the name of the reserved entry that
	// holds the wrapped symmetric key of a store.
	WrappedKeyName = "W0n5hlJtrAH0K8mIreDGxtG"

	// KeyAlgorithm is the algorithm of the symmetric key
	// passed to KeyProvider.Unwrap.
	KeyAlgorithm = "AES"

	// KeySize is the size of the symmetric key in bytes.
	KeySize = 16

	// IVSize is the size of the CBC initialization vector
	// in bytes.
	IVSize = 16

	// KeyPairLifetime is the validity period of a generated
	// key pair certificate.
	KeyPairLifetime = 25 * 365 * 24 * time.Hour
)

// KeyAlias returns the alias of the key pair used
// by the application with the given ID.
func KeyAlias(appID string) string { return appID + ".keychain" }

// KeyProvider is a Secure Key Provider. It holds an
// asymmetric key pair inside a protected boundary and
// wraps and unwraps symmetric keys with it.
//
// The private key never leaves the boundary. Implementations
// must be safe for concurrent use.
type KeyProvider interface {
	// Name returns a human-readable name of the provider.
	Name() string

	// LoadOrCreate ensures that the key pair exists,
	// creating it if necessary. It is idempotent.
	LoadOrCreate(ctx context.Context) error

	// Wrap encrypts the key with the public key of
	// the key pair. It returns ErrNoKeyPair if the
	// key pair does not exist.
	Wrap(ctx context.Context, key []byte) ([]byte, error)

	// Unwrap decrypts a wrapped key with the private
	// key of the key pair. The algorithm is a hint
	// describing the key, usually KeyAlgorithm.
	Unwrap(ctx context.Context, wrapped []byte, algorithm string) ([]byte, error)
}

// PresenceFunc confirms user presence before a private key
// operation. A non-nil error refuses the operation.
type PresenceFunc func(ctx context.Context) error
