// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package file implements a key-value store that keeps
// all entries of a namespace in a single file.
//
// The file contains a MessagePack map from namespace to
// a map of entry names to values. Every mutation rewrites
// the file atomically.
package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"aead.dev/mem"
	"github.com/minio/keychain/kv"
	"github.com/tinylib/msgp/msgp"
)

// MaxSize is the maximum size of a store file.
const MaxSize = 16 * mem.MiB

// Open returns a new Store for the given namespace
// that persists its entries in the file at path.
//
// If no file exists at path, Open creates the parent
// directory but defers creating the file until the
// first mutation.
func Open(path, namespace string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	s := &Store{
		path:      path,
		namespace: namespace,
	}
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	s.data = data
	return s, nil
}

// Store is a key-value store backed by a single file.
type Store struct {
	path      string
	namespace string

	lock sync.RWMutex
	data map[string]map[string]string
}

var _ kv.Store = (*Store)(nil)

func (s *Store) String() string { return "File: " + s.path }

// Status returns the current state of the Store.
func (s *Store) Status(context.Context) (kv.State, error) {
	start := time.Now()
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return kv.State{}, &kv.Unreachable{Err: err}
	}
	return kv.State{
		Latency: time.Since(start),
	}, nil
}

// Create adds the entry if and only if no entry with
// the given name exists. Otherwise, it returns kv.ErrExists.
func (s *Store) Create(_ context.Context, name, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.data[s.namespace][name]; ok {
		return kv.ErrExists
	}
	return s.update(func(entries map[string]string) { entries[name] = value })
}

// Set adds or replaces the entry.
func (s *Store) Set(_ context.Context, name, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.update(func(entries map[string]string) { entries[name] = value })
}

// Get returns the value of the named entry, or
// kv.ErrNotExists if there is no such entry.
func (s *Store) Get(_ context.Context, name string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.data[s.namespace][name]
	if !ok {
		return "", kv.ErrNotExists
	}
	return value, nil
}

// Delete removes the named entry, or returns
// kv.ErrNotExists if there is no such entry.
func (s *Store) Delete(_ context.Context, name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.data[s.namespace][name]; !ok {
		return kv.ErrNotExists
	}
	return s.update(func(entries map[string]string) { delete(entries, name) })
}

// Clear removes all entries of the Store's namespace.
// Entries of other namespaces within the same file
// are left untouched.
func (s *Store) Clear(context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.data[s.namespace]) == 0 {
		return nil
	}
	return s.update(func(entries map[string]string) { clear(entries) })
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// update applies f to a copy of the namespace entries,
// persists the result and, on success, replaces the
// in-memory state. The caller must hold the write lock.
func (s *Store) update(f func(map[string]string)) error {
	entries := make(map[string]string, len(s.data[s.namespace])+1)
	for k, v := range s.data[s.namespace] {
		entries[k] = v
	}
	f(entries)

	data := make(map[string]map[string]string, len(s.data)+1)
	for ns, e := range s.data {
		data[ns] = e
	}
	if len(entries) == 0 {
		delete(data, s.namespace)
	} else {
		data[s.namespace] = entries
	}

	if err := s.store(data); err != nil {
		return err
	}
	s.data = data
	return nil
}

func (s *Store) load() (map[string]map[string]string, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	b, err := io.ReadAll(mem.LimitReader(file, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if mem.Size(len(b)) > MaxSize {
		return nil, kv.ErrTooLarge
	}
	if len(b) == 0 {
		return map[string]map[string]string{}, nil
	}
	return decode(b)
}

func (s *Store) store(data map[string]map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err = tmp.Chmod(0o600); err != nil {
		return err
	}
	b := encode(data)
	if mem.Size(len(b)) > MaxSize {
		return kv.ErrTooLarge
	}
	if _, err = tmp.Write(b); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func encode(data map[string]map[string]string) []byte {
	b := msgp.AppendMapHeader(nil, uint32(len(data)))
	for ns, entries := range data {
		b = msgp.AppendString(b, ns)
		b = msgp.AppendMapHeader(b, uint32(len(entries)))
		for name, value := range entries {
			b = msgp.AppendString(b, name)
			b = msgp.AppendString(b, value)
		}
	}
	return b
}

func decode(b []byte) (map[string]map[string]string, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	// Every entry takes at least two bytes. Untrusted
	// headers must not size the allocation.
	data := make(map[string]map[string]string, min(n, uint32(len(b)/2)))
	for i := uint32(0); i < n; i++ {
		var (
			ns string
			m  uint32
		)
		if ns, b, err = msgp.ReadStringBytes(b); err != nil {
			return nil, err
		}
		if m, b, err = msgp.ReadMapHeaderBytes(b); err != nil {
			return nil, err
		}
		entries := make(map[string]string, min(m, uint32(len(b)/2)))
		for j := uint32(0); j < m; j++ {
			var name, value string
			if name, b, err = msgp.ReadStringBytes(b); err != nil {
				return nil, err
			}
			if value, b, err = msgp.ReadStringBytes(b); err != nil {
				return nil, err
			}
			entries[name] = value
		}
		data[ns] = entries
	}
	if len(b) != 0 {
		return nil, errors.New("file: trailing data after store content")
	}
	return data, nil
}
