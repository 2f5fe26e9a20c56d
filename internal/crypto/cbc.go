// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
)

// ErrPadding is returned when a decrypted CBC message
// does not end with valid PKCS #7 padding.
var ErrPadding = errors.New("crypto: invalid PKCS #7 padding")

// ErrBlockSize is returned when a CBC ciphertext is empty or
// not a multiple of the AES block size.
var ErrBlockSize = errors.New("crypto: ciphertext is not a multiple of the block size")

// EncryptCBC pads the plaintext according to PKCS #7 and encrypts
// it with AES in CBC mode. The key must be 16, 24 or 32 bytes
// long and the iv must be exactly one block.
func EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, errors.New("crypto: invalid IV length")
	}

	ciphertext := Pad(plaintext, block.BlockSize())
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, ciphertext)
	return ciphertext, nil
}

// DecryptCBC decrypts the ciphertext with AES in CBC mode and
// removes the PKCS #7 padding.
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, errors.New("crypto: invalid IV length")
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, ErrBlockSize
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return Unpad(plaintext, block.BlockSize())
}

// Pad returns a copy of b with PKCS #7 padding appended.
// The result is never empty.
func Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// Unpad removes PKCS #7 padding from b. It returns
// ErrPadding if b is not correctly padded.
func Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, ErrPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, ErrPadding
	}

	var invalid int
	for _, v := range b[len(b)-n:] {
		invalid |= subtle.ConstantTimeByteEq(v, byte(n)) ^ 1
	}
	if invalid != 0 {
		return nil, ErrPadding
	}
	return b[:len(b)-n], nil
}
