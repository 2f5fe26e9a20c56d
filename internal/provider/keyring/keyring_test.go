// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keyring

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/crypto"
	"github.com/minio/keychain/internal/kv/mem"
)

const testAlias = "com.example.test.keychain"

func TestProvider(t *testing.T) {
	ctx := context.Background()
	ring := keyring.NewArrayKeyring(nil)

	p := New(ring, testAlias, nil, nil)
	if _, err := p.Wrap(ctx, make([]byte, 16)); !errors.Is(err, keychain.ErrNoKeyPair) {
		t.Fatalf("Wrap before LoadOrCreate: got error '%v' - want '%v'", err, keychain.ErrNoKeyPair)
	}
	if err := p.LoadOrCreate(ctx); err != nil {
		t.Fatalf("Failed to create key pair: %v", err)
	}
	item, err := ring.Get(testAlias)
	if err != nil {
		t.Fatalf("Key pair not stored in keyring: %v", err)
	}

	key := bytes.Repeat([]byte{7}, keychain.KeySize)
	wrapped, err := p.Wrap(ctx, key)
	if err != nil {
		t.Fatalf("Failed to wrap key: %v", err)
	}

	// A new provider must load the stored key pair.
	p = New(ring, testAlias, nil, nil)
	if err = p.LoadOrCreate(ctx); err != nil {
		t.Fatalf("Failed to load key pair: %v", err)
	}
	if again, _ := ring.Get(testAlias); !bytes.Equal(again.Data, item.Data) {
		t.Fatal("Key pair has been replaced")
	}
	unwrapped, err := p.Unwrap(ctx, wrapped, keychain.KeyAlgorithm)
	if err != nil {
		t.Fatalf("Failed to unwrap key: %v", err)
	}
	if !bytes.Equal(unwrapped, key) {
		t.Fatalf("Got '%x' - want '%x'", unwrapped, key)
	}
}

func TestProviderFileBackend(t *testing.T) {
	ctx := context.Background()

	ring, err := Open(&Config{
		Service:      "keychain-test",
		Backends:     []string{string(keyring.FileBackend)},
		FileDir:      t.TempDir(),
		FilePassword: "password",
	})
	if err != nil {
		t.Fatalf("Failed to open keyring: %v", err)
	}

	p := New(ring, testAlias, nil, nil)
	store, err := keychain.Open(ctx, &keychain.Config{KV: &mem.Store{}, Provider: p})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err = store.Put(ctx, "token", "abc123"); err != nil {
		t.Fatalf("Failed to put value: %v", err)
	}
	value, ok, err := store.Get(ctx, "token")
	if err != nil || !ok || value != "abc123" {
		t.Fatalf("Got ('%s', %v, %v) - want ('abc123', true, nil)", value, ok, err)
	}
}

func TestProviderNotPrivateKey(t *testing.T) {
	ctx := context.Background()

	kp, err := crypto.GenerateKeyPair(testAlias, keychain.KeyPairLifetime)
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}
	data, err := kp.MarshalPEM(nil)
	if err != nil {
		t.Fatalf("Failed to encode key pair: %v", err)
	}
	end := bytes.Index(data, []byte("-----END CERTIFICATE-----\n"))
	ring := keyring.NewArrayKeyring([]keyring.Item{{
		Key:  testAlias,
		Data: data[:end+len("-----END CERTIFICATE-----\n")],
	}})

	p := New(ring, testAlias, nil, nil)
	if err = p.LoadOrCreate(ctx); !errors.Is(err, keychain.ErrNotPrivateKey) {
		t.Fatalf("Got error '%v' - want '%v'", err, keychain.ErrNotPrivateKey)
	}
}

func TestProviderPresence(t *testing.T) {
	ctx := context.Background()

	refuse := func(context.Context) error { return errors.New("user canceled") }
	p := New(keyring.NewArrayKeyring(nil), testAlias, refuse, nil)
	if err := p.LoadOrCreate(ctx); err != nil {
		t.Fatalf("Failed to create key pair: %v", err)
	}
	wrapped, err := p.Wrap(ctx, make([]byte, keychain.KeySize))
	if err != nil {
		t.Fatalf("Failed to wrap key: %v", err)
	}
	if _, err = p.Unwrap(ctx, wrapped, keychain.KeyAlgorithm); !errors.Is(err, keychain.ErrPresence) {
		t.Fatalf("Got error '%v' - want '%v'", err, keychain.ErrPresence)
	}
	if errors.Is(err, keychain.ErrKeyBoundary) || !errors.Is(err, keychain.ErrWrap) {
		t.Fatalf("Invalid error kind: got '%v' - want '%v'", keychain.KindOf(err), keychain.Wrap)
	}
}
