// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package vault

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/kv/mem"
)

func TestConnectInvalidConfig(t *testing.T) {
	for i, test := range connectInvalidTests {
		if _, err := Connect(testingContext(t), test); err == nil {
			t.Fatalf("Test %d: connect should have failed", i)
		}
	}
}

var connectInvalidTests = []*Config{
	{KeyName: "my-key", Token: "s.token"},                  // 0: no endpoint
	{Endpoint: "http://127.0.0.1:8200", Token: "s.token"},  // 1: no key name
	{Endpoint: "http://127.0.0.1:8200", KeyName: "my-key"}, // 2: no auth
	{ // 3: more than one auth method
		Endpoint: "http://127.0.0.1:8200",
		KeyName:  "my-key",
		AppRole:  &AppRole{ID: "role", Secret: "secret"},
		K8S:      &Kubernetes{Role: "role", JWT: "jwt"},
	},
	{ // 4: CA path does not exist
		Endpoint: "http://127.0.0.1:8200",
		KeyName:  "my-key",
		Token:    "s.token",
		CAPath:   "./testdata/does-not-exist",
	},
}

func TestProvider(t *testing.T) {
	ctx := testingContext(t)
	fake := newFakeVault()
	server := httptest.NewServer(fake)
	defer server.Close()

	p, err := Connect(ctx, &Config{
		Endpoint: server.URL,
		KeyName:  "my-keychain",
		AppRole:  &AppRole{ID: "role-id", Secret: "secret-id"},
		ErrorLog: discard,
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer p.Close()

	if p.Name() != "vault" {
		t.Fatalf("Invalid name: got '%s' - want 'vault'", p.Name())
	}
	if _, err = p.Wrap(ctx, make([]byte, keychain.KeySize)); !errors.Is(err, keychain.ErrNoKeyPair) {
		t.Fatalf("Wrap without transit key: got '%v' - want '%v'", err, keychain.ErrNoKeyPair)
	}
	if err = p.LoadOrCreate(ctx); err != nil {
		t.Fatalf("Failed to create transit key: %v", err)
	}
	if fake.KeyType("my-keychain") != KeyType {
		t.Fatalf("Invalid transit key type: got '%s' - want '%s'", fake.KeyType("my-keychain"), KeyType)
	}
	if err = p.LoadOrCreate(ctx); err != nil {
		t.Fatalf("Failed to load transit key: %v", err)
	}

	key := bytes.Repeat([]byte{0xa5}, keychain.KeySize)
	wrapped, err := p.Wrap(ctx, key)
	if err != nil {
		t.Fatalf("Failed to wrap key: %v", err)
	}
	if !strings.HasPrefix(string(wrapped), "vault:v1:") {
		t.Fatalf("Invalid wrapped key: got '%s'", wrapped)
	}
	unwrapped, err := p.Unwrap(ctx, wrapped, keychain.KeyAlgorithm)
	if err != nil {
		t.Fatalf("Failed to unwrap key: %v", err)
	}
	if !bytes.Equal(unwrapped, key) {
		t.Fatalf("Unwrapped key does not match: got '%x' - want '%x'", unwrapped, key)
	}

	if _, err = p.Unwrap(ctx, wrapped, "DES"); !errors.Is(err, keychain.ErrWrap) {
		t.Fatalf("Unwrap with invalid algorithm: got '%v' - want '%v'", err, keychain.ErrWrap)
	}
	if _, err = p.Unwrap(ctx, []byte("vault:v1:invalid"), keychain.KeyAlgorithm); !errors.Is(err, keychain.ErrWrap) {
		t.Fatalf("Unwrap of invalid ciphertext: got '%v' - want '%v'", err, keychain.ErrWrap)
	}
}

func TestProviderStore(t *testing.T) {
	ctx := testingContext(t)
	server := httptest.NewServer(newFakeVault())
	defer server.Close()

	p, err := Connect(ctx, &Config{
		Endpoint: server.URL,
		KeyName:  "my-keychain",
		Token:    "s.root",
		ErrorLog: discard,
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer p.Close()

	store, err := keychain.Open(ctx, &keychain.Config{
		KV:       new(mem.Store),
		Provider: p,
		ErrorLog: discard,
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err = store.Put(ctx, "password", "s3cr3t"); err != nil {
		t.Fatalf("Failed to put value: %v", err)
	}
	value, ok, err := store.Get(ctx, "password")
	if err != nil || !ok {
		t.Fatalf("Failed to get value: %v", err)
	}
	if value != "s3cr3t" {
		t.Fatalf("Invalid value: got '%s' - want 's3cr3t'", value)
	}
}

func TestProviderNotRSA(t *testing.T) {
	ctx := testingContext(t)
	fake := newFakeVault()
	fake.keys["aes-key"] = "aes256-gcm96"
	server := httptest.NewServer(fake)
	defer server.Close()

	p, err := Connect(ctx, &Config{
		Endpoint: server.URL,
		KeyName:  "aes-key",
		Token:    "s.root",
		ErrorLog: discard,
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer p.Close()

	if err = p.LoadOrCreate(ctx); !errors.Is(err, keychain.ErrNotPrivateKey) {
		t.Fatalf("Load of non-RSA transit key: got '%v' - want '%v'", err, keychain.ErrNotPrivateKey)
	}
}

func TestProviderPermissionDenied(t *testing.T) {
	ctx := testingContext(t)
	fake := newFakeVault()
	fake.denied = true
	server := httptest.NewServer(fake)
	defer server.Close()

	p, err := Connect(ctx, &Config{
		Endpoint: server.URL,
		KeyName:  "my-keychain",
		Token:    "s.root",
		ErrorLog: discard,
	})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer p.Close()

	if err = p.LoadOrCreate(ctx); !errors.Is(err, keychain.ErrKeyBoundary) {
		t.Fatalf("Load with permission denied: got '%v' - want '%v'", err, keychain.ErrKeyBoundary)
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testingContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// fakeVault is a minimal Vault server implementing the AppRole
// login, the health endpoint and a subset of the transit engine.
// Its "encryption" is a reversible XOR and only tests the wire
// protocol.
type fakeVault struct {
	lock   sync.Mutex
	keys   map[string]string // name -> type
	denied bool
}

func newFakeVault() *fakeVault {
	return &fakeVault{keys: map[string]string{}}
}

func (f *fakeVault) KeyType(name string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.keys[name]
}

func (f *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if r.URL.Path == "/v1/sys/health" {
		reply(w, http.StatusOK, map[string]any{"initialized": true, "sealed": false})
		return
	}
	if r.URL.Path == "/v1/auth/approle/login" {
		reply(w, http.StatusOK, map[string]any{
			"auth": map[string]any{
				"client_token":   "s.approle",
				"lease_duration": 0,
				"renewable":      false,
			},
		})
		return
	}
	if f.denied {
		reply(w, http.StatusForbidden, map[string]any{"errors": []string{"permission denied"}})
		return
	}

	var body map[string]string
	if r.Body != nil && r.ContentLength != 0 {
		json.NewDecoder(r.Body).Decode(&body)
	}
	switch {
	case strings.HasPrefix(r.URL.Path, "/v1/transit/keys/"):
		name := strings.TrimPrefix(r.URL.Path, "/v1/transit/keys/")
		if r.Method == http.MethodGet {
			keyType, ok := f.keys[name]
			if !ok {
				reply(w, http.StatusNotFound, map[string]any{"errors": []string{}})
				return
			}
			reply(w, http.StatusOK, map[string]any{"data": map[string]any{"name": name, "type": keyType}})
			return
		}
		if _, ok := f.keys[name]; !ok {
			f.keys[name] = body["type"]
		}
		w.WriteHeader(http.StatusNoContent)
	case strings.HasPrefix(r.URL.Path, "/v1/transit/encrypt/"):
		plaintext, err := base64.StdEncoding.DecodeString(body["plaintext"])
		if err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"errors": []string{err.Error()}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{
			"ciphertext": "vault:v1:" + base64.StdEncoding.EncodeToString(xor(plaintext)),
		}})
	case strings.HasPrefix(r.URL.Path, "/v1/transit/decrypt/"):
		ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(body["ciphertext"], "vault:v1:"))
		if err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"errors": []string{"invalid ciphertext"}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{
			"plaintext": base64.StdEncoding.EncodeToString(xor(ciphertext)),
		}})
	default:
		reply(w, http.StatusNotFound, map[string]any{"errors": []string{}})
	}
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func xor(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] ^ 0x5a
	}
	return out
}
