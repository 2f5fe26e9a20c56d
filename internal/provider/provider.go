// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package provider contains helpers shared by key providers
// that hold an RSA key pair in process memory.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/crypto"
)

// Wrap wraps the key with the public key of the key pair
// using RSAES-PKCS1-v1_5.
func Wrap(name string, kp *crypto.KeyPair, key []byte) ([]byte, error) {
	wrapped, err := crypto.WrapKey(kp.PublicKey(), key)
	if err != nil {
		return nil, keychain.WrapError(keychain.Wrap, name+": failed to wrap key", err)
	}
	return wrapped, nil
}

// Unwrap unwraps the key with the private key of the key pair.
// If presence is not nil, it must confirm user presence first.
func Unwrap(ctx context.Context, name string, kp *crypto.KeyPair, presence keychain.PresenceFunc, wrapped []byte, algorithm string) ([]byte, error) {
	if err := CheckAlgorithm(name, algorithm); err != nil {
		return nil, err
	}
	if presence != nil {
		if err := presence(ctx); err != nil {
			return nil, keychain.WrapError(keychain.Wrap, keychain.ErrPresence.Error(), err)
		}
	}
	key, err := crypto.UnwrapKey(kp.PrivateKey, wrapped)
	if err != nil {
		return nil, keychain.WrapError(keychain.Wrap, name+": failed to unwrap key", err)
	}
	return key, nil
}

// CheckAlgorithm returns an error if algorithm is not
// keychain.KeyAlgorithm.
func CheckAlgorithm(name, algorithm string) error {
	if algorithm != keychain.KeyAlgorithm {
		return keychain.NewError(keychain.Wrap, fmt.Sprintf("%s: unsupported key algorithm '%s'", name, algorithm))
	}
	return nil
}

// ParseKeyPair parses a PEM-encoded key pair and maps
// parsing errors to keychain errors.
func ParseKeyPair(name string, data, passphrase []byte) (*crypto.KeyPair, error) {
	kp, err := crypto.ParseKeyPair(data, passphrase)
	switch {
	case err == nil:
		return kp, nil
	case errors.Is(err, crypto.ErrNoPrivateKey):
		return nil, keychain.ErrNotPrivateKey
	case errors.Is(err, crypto.ErrDecrypt):
		return nil, keychain.WrapError(keychain.KeyBoundary, name+": failed to decrypt private key", err)
	default:
		return nil, keychain.WrapError(keychain.KeyBoundary, name+": invalid key pair", err)
	}
}
