// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/api"
	"github.com/minio/keychain/internal/kv/mem"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, "")

	if _, ok, err := client.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("Get of missing key: ok=%v, err=%v", ok, err)
	}
	if err := client.Put(ctx, "token", "abc123"); err != nil {
		t.Fatalf("Failed to put value: %v", err)
	}
	value, ok, err := client.Get(ctx, "token")
	if err != nil || !ok {
		t.Fatalf("Failed to get value: ok=%v, err=%v", ok, err)
	}
	if value != "abc123" {
		t.Fatalf("Invalid value: got '%s' - want 'abc123'", value)
	}

	if err = client.Put(ctx, "empty", ""); err != nil {
		t.Fatalf("Failed to put empty value: %v", err)
	}
	if value, ok, err = client.Get(ctx, "empty"); err != nil || !ok || value != "" {
		t.Fatalf("Get of empty value: value='%s', ok=%v, err=%v", value, ok, err)
	}

	if err = client.Remove(ctx, "token"); err != nil {
		t.Fatalf("Failed to remove key: %v", err)
	}
	if _, ok, err = client.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("Get of removed key: ok=%v, err=%v", ok, err)
	}

	if err = client.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear store: %v", err)
	}
	if _, ok, err = client.Get(ctx, "empty"); err != nil || ok {
		t.Fatalf("Get after clear: ok=%v, err=%v", ok, err)
	}

	version, err := client.Version(ctx)
	if err != nil || version == "" {
		t.Fatalf("Failed to fetch version: '%s' %v", version, err)
	}
	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch status: %v", err)
	}
	if !status.StoreAvailable || status.Provider != "xor" {
		t.Fatalf("Invalid status: %+v", status)
	}
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	client, db := newTestClient(t, "my-token")

	var statusErr *keychain.StatusError
	if _, _, err := client.Get(ctx, "token"); !errors.As(err, &statusErr) || statusErr.Status() != http.StatusUnauthorized {
		t.Fatalf("Get without API token: got '%v' - want status %d", err, http.StatusUnauthorized)
	}

	client.APIToken = "my-token"
	if err := client.Put(ctx, keychain.WrappedKeyName, "value"); !errors.Is(err, keychain.ErrReservedKey) {
		t.Fatalf("Put of reserved key: got '%v' - want '%v'", err, keychain.ErrReservedKey)
	}
	if err := db.Set(ctx, "token", "%%%"); err != nil {
		t.Fatalf("Failed to write corrupted record: %v", err)
	}
	if _, _, err := client.Get(ctx, "token"); !errors.Is(err, keychain.ErrFormat) {
		t.Fatalf("Get of corrupted record: got '%v' - want '%v'", err, keychain.ErrFormat)
	}

	// A wrapped key that unwraps to a key of invalid size.
	if err := client.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear store: %v", err)
	}
	if err := db.Create(ctx, keychain.WrappedKeyName, base64.StdEncoding.EncodeToString([]byte("short"))); err != nil {
		t.Fatalf("Failed to write wrapped key: %v", err)
	}
	if _, _, err := client.Get(ctx, "token"); !errors.Is(err, keychain.ErrWrap) {
		t.Fatalf("Get with invalid wrapped key: got '%v' - want '%v'", err, keychain.ErrWrap)
	}
}

func TestClientConnError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := keychain.NewClient(endpoint, nil)
	var connErr *keychain.ConnError
	if _, err := client.Version(context.Background()); !errors.As(err, &connErr) {
		t.Fatalf("Request to closed server: got '%v' - want a connection error", err)
	}
}

func newTestClient(t *testing.T, token string) (*keychain.Client, *mem.Store) {
	t.Helper()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := &mem.Store{}
	store, err := keychain.Open(context.Background(), &keychain.Config{
		KV:       db,
		Provider: xorProvider{},
		ErrorLog: discard,
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(api.NewRouter(&api.RouterConfig{
		Store:    store,
		Verify:   api.BearerToken(token),
		ErrorLog: discard,
	}))
	t.Cleanup(server.Close)

	client := keychain.NewClient(server.URL, nil)
	return client, db
}

// xorProvider is a key provider that "wraps" keys with
// a fixed XOR mask.
type xorProvider struct{}

func (xorProvider) Name() string { return "xor" }

func (xorProvider) LoadOrCreate(context.Context) error { return nil }

func (xorProvider) Wrap(_ context.Context, key []byte) ([]byte, error) { return xor(key), nil }

func (xorProvider) Unwrap(_ context.Context, wrapped []byte, _ string) ([]byte, error) {
	return xor(wrapped), nil
}

func xor(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] ^ 0x3c
	}
	return out
}
