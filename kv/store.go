// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package kv provides abstractions over the persistent,
// string-keyed map a keychain stores its entries in.
package kv

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrExists is returned by a Store when trying to create
	// an entry but the key already exists.
	ErrExists = errors.New("kv: key already exists")

	// ErrNotExists is returned by a Store when trying to
	// access an entry but the key does not exist.
	ErrNotExists = errors.New("kv: key does not exist")

	// ErrTooLarge is returned by a Store when a value
	// exceeds the size limit of the storage.
	ErrTooLarge = errors.New("kv: value too large")
)

// Store is a durable map from names to string values
// within a single namespace.
//
// Multiple goroutines may invoke methods
// on a Store simultaneously.
type Store interface {
	// Status returns the current state of the
	// Store or an error explaining why fetching
	// status information failed.
	//
	// Status returns an *Unreachable error when
	// it fails to reach the storage.
	Status(context.Context) (State, error)

	// Create creates a new entry at the
	// storage if and only if no entry for
	// the given name exists.
	//
	// If such an entry already exists,
	// Create returns ErrExists.
	Create(ctx context.Context, name, value string) error

	// Set writes the name-value pair to the
	// storage. It replaces any existing
	// value.
	Set(ctx context.Context, name, value string) error

	// Get returns the value associated with
	// the given name.
	//
	// It returns ErrNotExists if no such
	// entry exists.
	Get(ctx context.Context, name string) (string, error)

	// Delete deletes the name and the associated
	// value from the storage.
	//
	// It returns ErrNotExists if no such
	// entry exists.
	Delete(ctx context.Context, name string) error

	// Clear deletes all entries within the
	// Store's namespace.
	Clear(context.Context) error

	io.Closer
}

// State describes the state of a Store.
type State struct {
	// Latency is the connection latency
	// to the Store.
	Latency time.Duration
}

// Unreachable is an error that indicates that the
// Store is not reachable - for example due to a
// missing directory or a network error.
type Unreachable struct {
	Err error
}

// IsUnreachable reports whether err is an Unreachable
// error. If IsUnreachable returns true it returns err
// as Unreachable error.
func IsUnreachable(err error) (*Unreachable, bool) {
	var u *Unreachable
	if errors.As(err, &u) {
		return u, true
	}
	return nil, false
}

func (e *Unreachable) Error() string {
	if e.Err == nil {
		return "kv: store unreachable"
	}
	return "kv: store unreachable: " + e.Err.Error()
}

// Unwrap returns the Unreachable's underlying error,
// if any.
func (e *Unreachable) Unwrap() error { return e.Err }
