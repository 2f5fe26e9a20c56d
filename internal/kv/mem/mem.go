// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package mem implements an in-memory key-value store.
package mem

import (
	"context"
	"sync"

	"github.com/minio/keychain/kv"
)

// Store is an in-memory key-value store. Its zero value is
// ready to use.
type Store struct {
	lock  sync.RWMutex
	store map[string]string
}

var _ kv.Store = (*Store)(nil)

// Status returns the state of the in-memory store which is
// always healthy.
func (s *Store) Status(context.Context) (kv.State, error) {
	return kv.State{Latency: 0}, nil
}

// Create adds the given entry to the store if and only if
// no entry for the given name exists. If an entry already
// exists it returns kv.ErrExists.
func (s *Store) Create(_ context.Context, name, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.store == nil {
		s.store = map[string]string{}
	}
	if _, ok := s.store[name]; ok {
		return kv.ErrExists
	}
	s.store[name] = value
	return nil
}

// Set adds the given entry to the store, replacing
// any existing value.
func (s *Store) Set(_ context.Context, name, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.store == nil {
		s.store = map[string]string{}
	}
	s.store[name] = value
	return nil
}

// Delete removes the entry with the given name. It returns
// kv.ErrNotExists if no such entry exists.
func (s *Store) Delete(_ context.Context, name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.store[name]; !ok {
		return kv.ErrNotExists
	}
	delete(s.store, name)
	return nil
}

// Get returns the value associated with the given name. If no
// entry for this name exists it returns kv.ErrNotExists.
func (s *Store) Get(_ context.Context, name string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.store[name]
	if !ok {
		return "", kv.ErrNotExists
	}
	return v, nil
}

// Clear removes all entries.
func (s *Store) Clear(context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	clear(s.store)
	return nil
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.store)
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
