// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"errors"
	"testing"
)

var sealTests = []struct {
	Passphrase []byte
	Plaintext  []byte
}{
	{Passphrase: []byte("secret"), Plaintext: nil},                       // 0
	{Passphrase: []byte("secret"), Plaintext: []byte("Hello World")},     // 1
	{Passphrase: []byte{}, Plaintext: bytes.Repeat([]byte{0xff}, 1<<10)}, // 2
}

func TestSeal(t *testing.T) {
	for i, test := range sealTests {
		sealed, err := Seal(test.Passphrase, test.Plaintext)
		if err != nil {
			t.Fatalf("Test %d: failed to seal: %v", i, err)
		}
		plaintext, err := Open(test.Passphrase, sealed)
		if err != nil {
			t.Fatalf("Test %d: failed to open: %v", i, err)
		}
		if !bytes.Equal(plaintext, test.Plaintext) {
			t.Fatalf("Test %d: got '%x' - want '%x'", i, plaintext, test.Plaintext)
		}

		if _, err = Open(append(test.Passphrase, 'x'), sealed); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("Test %d: opened with wrong passphrase: got error '%v' - want '%v'", i, err, ErrDecrypt)
		}
		sealed[len(sealed)-1] ^= 1
		if _, err = Open(test.Passphrase, sealed); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("Test %d: opened modified data: got error '%v' - want '%v'", i, err, ErrDecrypt)
		}
	}
}

func TestOpenMalformed(t *testing.T) {
	for i, sealed := range [][]byte{nil, {0x00}, {0x07, 0x00}, make([]byte, 1+SaltSize)} {
		if _, err := Open([]byte("secret"), sealed); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("Test %d: got error '%v' - want '%v'", i, err, ErrDecrypt)
		}
	}
}
