// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/sha256"
	"errors"

	"github.com/secure-io/sio-go/sioutil"
	"github.com/xdg-go/pbkdf2"
)

// PBKDF2 parameters used to derive sealing keys from passphrases.
const (
	Iterations = 100_000
	SaltSize   = 16
)

// ErrDecrypt is returned by Open when the sealed data
// cannot be decrypted. Usually, because the passphrase
// is wrong or the data has been modified.
var ErrDecrypt = errors.New("crypto: failed to decrypt sealed data: invalid passphrase or corrupted data")

// Seal encrypts the plaintext with a key derived from the
// passphrase. The returned data has the form:
//
//	algorithm (1 byte) | salt (16 bytes) | nonce (12 bytes) | ciphertext
//
// The header is authenticated as associated data.
func Seal(passphrase, plaintext []byte) ([]byte, error) {
	algorithm := DefaultAlgorithm()

	salt, err := sioutil.Random(SaltSize)
	if err != nil {
		return nil, err
	}
	nonce, err := sioutil.Random(algorithm.NonceSize())
	if err != nil {
		return nil, err
	}

	key := pbkdf2.Key(passphrase, salt, Iterations, algorithm.KeySize(), sha256.New)
	aead, err := algorithm.New(key)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 0, 1+SaltSize+len(nonce))
	header = append(header, byte(algorithm))
	header = append(header, salt...)
	header = append(header, nonce...)

	sealed := make([]byte, len(header), len(header)+len(plaintext)+aead.Overhead())
	copy(sealed, header)
	return aead.Seal(sealed, nonce, plaintext, header), nil
}

// Open decrypts data previously sealed by Seal with the
// same passphrase.
func Open(passphrase, sealed []byte) ([]byte, error) {
	if len(sealed) < 1+SaltSize {
		return nil, ErrDecrypt
	}
	algorithm := algorithm(sealed[0])
	if algorithm != AES_256_GCM && algorithm != ChaCha20Poly1305 {
		return nil, ErrDecrypt
	}

	headerSize := 1 + SaltSize + algorithm.NonceSize()
	if len(sealed) < headerSize {
		return nil, ErrDecrypt
	}
	var (
		header = sealed[:headerSize]
		salt   = header[1 : 1+SaltSize]
		nonce  = header[1+SaltSize:]
	)

	key := pbkdf2.Key(passphrase, salt, Iterations, algorithm.KeySize(), sha256.New)
	aead, err := algorithm.New(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, sealed[headerSize:], header)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
