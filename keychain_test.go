// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/minio/keychain/internal/crypto"
)

var testKeyPair = sync.OnceValues(func() (*crypto.KeyPair, error) {
	return crypto.GenerateKeyPair(KeyAlias("com.example.test"), KeyPairLifetime)
})

// testProvider is a KeyProvider backed by an in-process
// RSA key pair. Errors can be injected per operation.
type testProvider struct {
	LoadErr   error
	WrapErr   error
	UnwrapErr error

	Wraps   atomic.Int32
	Unwraps atomic.Int32
}

var _ KeyProvider = (*testProvider)(nil)

func (p *testProvider) Name() string { return "test" }

func (p *testProvider) LoadOrCreate(context.Context) error {
	if p.LoadErr != nil {
		return p.LoadErr
	}
	_, err := testKeyPair()
	return err
}

func (p *testProvider) Wrap(_ context.Context, key []byte) ([]byte, error) {
	if p.WrapErr != nil {
		return nil, p.WrapErr
	}
	kp, err := testKeyPair()
	if err != nil {
		return nil, err
	}
	p.Wraps.Add(1)
	return crypto.WrapKey(kp.PublicKey(), key)
}

func (p *testProvider) Unwrap(_ context.Context, wrapped []byte, _ string) ([]byte, error) {
	if p.UnwrapErr != nil {
		return nil, p.UnwrapErr
	}
	kp, err := testKeyPair()
	if err != nil {
		return nil, err
	}
	p.Unwraps.Add(1)
	return crypto.UnwrapKey(kp.PrivateKey, wrapped)
}

func testingContext(t *testing.T) (context.Context, context.CancelFunc) {
	d, ok := t.Deadline()
	if !ok {
		return context.WithCancel(context.Background())
	}
	return context.WithDeadline(context.Background(), d)
}
