// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package fs implements a key-value store that
// stores entries as files within a directory.
// The file name is derived from the entry name
// and the file content is the entry value.
package fs

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"aead.dev/mem"
	"github.com/minio/keychain/kv"
)

// Open returns a new Store that reads from and
// writes to the directory dir/namespace.
//
// If the directory or any parent directory
// does not exist, Open creates them all.
//
// It returns an error if the path exists but is
// not a directory.
func Open(dir, namespace string) (*Store, error) {
	if strings.ContainsAny(namespace, `/\`) || namespace == "." || namespace == ".." {
		return nil, errors.New("fs: invalid namespace '" + namespace + "'")
	}

	dir = filepath.Join(dir, namespace)
	switch file, err := os.Stat(dir); {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if !file.Mode().IsDir() {
			return nil, errors.New("fs: '" + dir + "' is not a directory")
		}
	}
	return &Store{dir: dir}, nil
}

// MaxValueSize is the maximum size of an entry value.
const MaxValueSize = 2 * mem.MiB

// Store is a key-value store backed by a directory
// on the filesystem.
type Store struct {
	dir  string
	lock sync.RWMutex
}

var _ kv.Store = (*Store)(nil)

func (s *Store) String() string { return "Filesystem: " + s.dir }

// Status returns the current state of the Store.
//
// In particular, it reports whether the underlying
// directory is accessible.
func (s *Store) Status(context.Context) (kv.State, error) {
	start := time.Now()
	if _, err := os.Stat(s.dir); err != nil {
		return kv.State{}, &kv.Unreachable{Err: err}
	}
	return kv.State{
		Latency: time.Since(start),
	}, nil
}

// Create creates a new file for the given name inside
// the Store directory if and only if no such file exists.
//
// It returns kv.ErrExists if such a file already exists.
func (s *Store) Create(_ context.Context, name, value string) error {
	if mem.Size(len(value)) > MaxValueSize {
		return kv.ErrTooLarge
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	filename := s.filename(name)
	switch err := create(filename, value); {
	case errors.Is(err, os.ErrExist):
		return kv.ErrExists
	case err != nil:
		os.Remove(filename)
		return err
	}
	return nil
}

// Set writes value to the file for the given name,
// replacing any existing content atomically.
func (s *Store) Set(_ context.Context, name, value string) error {
	if mem.Size(len(value)) > MaxValueSize {
		return kv.ErrTooLarge
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err = io.WriteString(tmp, value); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filename(name))
}

// Get reads the content of the file for the given name.
// It returns kv.ErrNotExists if no such file exists and
// kv.ErrTooLarge if the file exceeds MaxValueSize.
func (s *Store) Get(_ context.Context, name string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	file, err := os.Open(s.filename(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", kv.ErrNotExists
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	var value strings.Builder
	if _, err = io.Copy(&value, mem.LimitReader(file, MaxValueSize+1)); err != nil {
		return "", err
	}
	if mem.Size(value.Len()) > MaxValueSize {
		return "", kv.ErrTooLarge
	}
	if err = file.Close(); err != nil {
		return "", err
	}
	return value.String(), nil
}

// Delete deletes the file for the given name if and
// only if it exists. It returns kv.ErrNotExists if
// no such file exists.
func (s *Store) Delete(_ context.Context, name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	switch err := os.Remove(s.filename(name)); {
	case errors.Is(err, os.ErrNotExist):
		return kv.ErrNotExists
	default:
		return err
	}
}

// Clear deletes all files within the Store directory.
func (s *Store) Clear(context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// filename returns the path of the file holding the
// named entry. Entry names may contain arbitrary
// characters, so they are base64url-encoded. The
// prefix keeps the empty name addressable.
func (s *Store) filename(name string) string {
	return filepath.Join(s.dir, "k"+base64.RawURLEncoding.EncodeToString([]byte(name)))
}

func create(filename, value string) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	n, err := io.WriteString(file, value)
	if err != nil {
		return err
	}
	if n != len(value) {
		return io.ErrShortWrite
	}
	if err = file.Sync(); err != nil {
		return err
	}
	return file.Close()
}
