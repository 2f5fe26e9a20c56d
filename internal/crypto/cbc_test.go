// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

var padTests = []struct {
	Data   []byte
	Padded []byte
}{
	{Data: []byte{}, Padded: bytes.Repeat([]byte{16}, 16)},                                                            // 0
	{Data: []byte("a"), Padded: append([]byte("a"), bytes.Repeat([]byte{15}, 15)...)},                                 // 1
	{Data: bytes.Repeat([]byte{1}, 15), Padded: append(bytes.Repeat([]byte{1}, 15), 1)},                               // 2
	{Data: bytes.Repeat([]byte{1}, 16), Padded: append(bytes.Repeat([]byte{1}, 16), bytes.Repeat([]byte{16}, 16)...)}, // 3
}

func TestPad(t *testing.T) {
	for i, test := range padTests {
		padded := Pad(test.Data, 16)
		if !bytes.Equal(padded, test.Padded) {
			t.Fatalf("Test %d: got '%x' - want '%x'", i, padded, test.Padded)
		}
		data, err := Unpad(padded, 16)
		if err != nil {
			t.Fatalf("Test %d: failed to unpad: %v", i, err)
		}
		if !bytes.Equal(data, test.Data) {
			t.Fatalf("Test %d: got '%x' - want '%x'", i, data, test.Data)
		}
	}
}

var unpadTests = [][]byte{
	{},                           // 0
	bytes.Repeat([]byte{0}, 16),  // 1
	bytes.Repeat([]byte{17}, 16), // 2
	append(bytes.Repeat([]byte{1}, 14), 3, 2), // 3
	bytes.Repeat([]byte{1}, 15),               // 4
}

func TestUnpadInvalid(t *testing.T) {
	for i, test := range unpadTests {
		if _, err := Unpad(test, 16); !errors.Is(err, ErrPadding) {
			t.Fatalf("Test %d: got error '%v' - want '%v'", i, err, ErrPadding)
		}
	}
}

// NIST SP 800-38A, F.2.1 CBC-AES128.Encrypt, first block.
// The padding block is appended by EncryptCBC.
func TestEncryptCBC(t *testing.T) {
	var (
		key        = mustDecodeHex("2b7e151628aed2a6abf7158809cf4f3c")
		iv         = mustDecodeHex("000102030405060708090a0b0c0d0e0f")
		plaintext  = mustDecodeHex("6bc1bee22e409f96e93d7e117393172a")
		ciphertext = mustDecodeHex("7649abac8119b246cee98e9b12e9197d")
	)

	c, err := EncryptCBC(key, iv, plaintext)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	if len(c) != 32 {
		t.Fatalf("Invalid ciphertext length: got %d - want 32", len(c))
	}
	if !bytes.Equal(c[:16], ciphertext) {
		t.Fatalf("Invalid ciphertext: got '%x' - want '%x'", c[:16], ciphertext)
	}

	p, err := DecryptCBC(key, iv, c)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}
	if !bytes.Equal(p, plaintext) {
		t.Fatalf("Invalid plaintext: got '%x' - want '%x'", p, plaintext)
	}
}

func TestDecryptCBCInvalid(t *testing.T) {
	key := make([]byte, 16)
	iv := make([]byte, 16)

	if _, err := DecryptCBC(key, iv, nil); !errors.Is(err, ErrBlockSize) {
		t.Fatalf("Empty ciphertext: got error '%v' - want '%v'", err, ErrBlockSize)
	}
	if _, err := DecryptCBC(key, iv, make([]byte, 17)); !errors.Is(err, ErrBlockSize) {
		t.Fatalf("Unaligned ciphertext: got error '%v' - want '%v'", err, ErrBlockSize)
	}
	if _, err := DecryptCBC(key, iv[:8], make([]byte, 16)); err == nil {
		t.Fatal("Decrypted with invalid IV successfully")
	}
	if _, err := EncryptCBC(key[:7], iv, nil); err == nil {
		t.Fatal("Encrypted with invalid key successfully")
	}
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
