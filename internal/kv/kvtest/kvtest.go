// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package kvtest provides conformance tests for
// kv.Store implementations.
package kvtest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/minio/keychain/kv"
)

// Run runs all conformance tests against the given store.
// The store must be empty.
func Run(ctx context.Context, t *testing.T, store kv.Store) {
	t.Run("Create", func(t *testing.T) { Create(ctx, t, store) })
	t.Run("Set", func(t *testing.T) { Set(ctx, t, store) })
	t.Run("Get", func(t *testing.T) { Get(ctx, t, store) })
	t.Run("Delete", func(t *testing.T) { Delete(ctx, t, store) })
	t.Run("Clear", func(t *testing.T) { Clear(ctx, t, store) })
	t.Run("Status", func(t *testing.T) { Status(ctx, t, store) })
}

type setupFunc func(context.Context, kv.Store, string) error

var createTests = []struct {
	Name, Value string
	Setup       setupFunc
	ShouldFail  bool
}{
	{Name: "kvtest-create", Value: "value"},       // 0
	{Name: "", Value: "value for the empty name"}, // 1
	{Name: "kvtest/create/../x", Value: ""},       // 2
	{ // 3
		Name:  "kvtest-create",
		Value: "value",
		Setup: func(ctx context.Context, s kv.Store, name string) error {
			return s.Create(ctx, name, "existing")
		},
		ShouldFail: true,
	},
}

// Create tests that Store.Create creates new entries
// and refuses to overwrite existing ones.
func Create(ctx context.Context, t *testing.T, store kv.Store) {
	defer cleanup(ctx, t, store)

	for i, test := range createTests {
		name := fmt.Sprintf("%s-%d", test.Name, i)
		if test.Setup != nil {
			if err := test.Setup(ctx, store, name); err != nil {
				t.Fatalf("Test %d: failed to setup: %v", i, err)
			}
		}

		err := store.Create(ctx, name, test.Value)
		if err != nil && !test.ShouldFail {
			t.Fatalf("Test %d: failed to create '%s': %v", i, name, err)
		}
		if test.ShouldFail {
			if !errors.Is(err, kv.ErrExists) {
				t.Fatalf("Test %d: got error '%v' - want '%v'", i, err, kv.ErrExists)
			}
			continue
		}

		value, err := store.Get(ctx, name)
		if err != nil {
			t.Fatalf("Test %d: failed to get '%s': %v", i, name, err)
		}
		if value != test.Value {
			t.Fatalf("Test %d: got '%s' - want '%s'", i, value, test.Value)
		}
	}
}

// Set tests that Store.Set creates or replaces entries.
func Set(ctx context.Context, t *testing.T, store kv.Store) {
	defer cleanup(ctx, t, store)

	const Name = "kvtest-set"
	for i, value := range []string{"first", "", "third value"} {
		if err := store.Set(ctx, Name, value); err != nil {
			t.Fatalf("Test %d: failed to set '%s': %v", i, Name, err)
		}
		v, err := store.Get(ctx, Name)
		if err != nil {
			t.Fatalf("Test %d: failed to get '%s': %v", i, Name, err)
		}
		if v != value {
			t.Fatalf("Test %d: got '%s' - want '%s'", i, v, value)
		}
	}
}

// Get tests that Store.Get returns kv.ErrNotExists
// for missing entries.
func Get(ctx context.Context, t *testing.T, store kv.Store) {
	defer cleanup(ctx, t, store)

	if _, err := store.Get(ctx, "kvtest-get-missing"); !errors.Is(err, kv.ErrNotExists) {
		t.Fatalf("Get of missing entry: got error '%v' - want '%v'", err, kv.ErrNotExists)
	}
	if err := store.Set(ctx, "kvtest-get", "value"); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}
	if _, err := store.Get(ctx, "kvtest-get-"); !errors.Is(err, kv.ErrNotExists) {
		t.Fatalf("Get of missing entry: got error '%v' - want '%v'", err, kv.ErrNotExists)
	}
}

// Delete tests that Store.Delete removes entries.
func Delete(ctx context.Context, t *testing.T, store kv.Store) {
	defer cleanup(ctx, t, store)

	const Name = "kvtest-delete"
	if err := store.Delete(ctx, Name); !errors.Is(err, kv.ErrNotExists) {
		t.Fatalf("Delete of missing entry: got error '%v' - want '%v'", err, kv.ErrNotExists)
	}
	if err := store.Create(ctx, Name, "value"); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	if err := store.Delete(ctx, Name); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}
	if _, err := store.Get(ctx, Name); !errors.Is(err, kv.ErrNotExists) {
		t.Fatalf("Get of deleted entry: got error '%v' - want '%v'", err, kv.ErrNotExists)
	}
	if err := store.Create(ctx, Name, "value"); err != nil {
		t.Fatalf("Failed to re-create deleted entry: %v", err)
	}
}

// Clear tests that Store.Clear removes all entries.
func Clear(ctx context.Context, t *testing.T, store kv.Store) {
	names := []string{"kvtest-clear-0", "kvtest-clear-1", ""}
	for _, name := range names {
		if err := store.Set(ctx, name, "value"); err != nil {
			t.Fatalf("Failed to set '%s': %v", name, err)
		}
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear store: %v", err)
	}
	for _, name := range names {
		if _, err := store.Get(ctx, name); !errors.Is(err, kv.ErrNotExists) {
			t.Fatalf("Get of '%s' after clear: got error '%v' - want '%v'", name, err, kv.ErrNotExists)
		}
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear empty store: %v", err)
	}
}

// Status tests that Store.Status reports a reachable store.
func Status(ctx context.Context, t *testing.T, store kv.Store) {
	if _, err := store.Status(ctx); err != nil {
		t.Fatalf("Failed to fetch status: %v", err)
	}
}

func cleanup(ctx context.Context, t *testing.T, store kv.Store) {
	if err := store.Clear(ctx); err != nil {
		t.Errorf("Cleanup: failed to clear store: %v", err)
	}
}

// Context returns a context that is canceled when the
// test deadline expires.
func Context(t *testing.T) (context.Context, context.CancelFunc) {
	d, ok := t.Deadline()
	if !ok {
		return context.WithCancel(context.Background())
	}
	return context.WithDeadline(context.Background(), d)
}
