// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/minio/keychain/internal/fips"
	"github.com/secure-io/sio-go/sioutil"
	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD algorithms used to seal data at rest.
const (
	AES_256_GCM      algorithm = 0x00
	ChaCha20Poly1305 algorithm = 0x01
)

type algorithm byte

// DefaultAlgorithm returns AES-256-GCM if the CPU provides
// an AES-GCM implementation or FIPS mode is enabled,
// and ChaCha20-Poly1305 otherwise.
func DefaultAlgorithm() algorithm {
	if fips.Enabled || sioutil.NativeAES() {
		return AES_256_GCM
	}
	return ChaCha20Poly1305
}

func (a algorithm) New(key []byte) (cipher.AEAD, error) {
	switch a {
	case AES_256_GCM:
		if len(key) != a.KeySize() {
			return nil, aes.KeySizeError(len(key))
		}
		block, _ := aes.NewCipher(key) // block is never nil since we checked the key size
		return cipher.NewGCM(block)
	case ChaCha20Poly1305:
		if fips.Enabled {
			return nil, errors.New("crypto: ChaCha20Poly1305 is not supported in FIPS mode")
		}
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("crypto: unknown algorithm '%d'", byte(a))
	}
}

func (a algorithm) KeySize() int { return 256 / 8 }

func (a algorithm) NonceSize() int { return 96 / 8 }

func (a algorithm) String() string {
	switch a {
	case AES_256_GCM:
		return "AES-256-GCM"
	case ChaCha20Poly1305:
		return "ChaCha20Poly1305"
	default:
		return fmt.Sprintf("algorithm(%d)", byte(a))
	}
}
