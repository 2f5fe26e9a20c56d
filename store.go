// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"aead.dev/mem"
	"github.com/minio/keychain/kv"
)

// MaxValueSize is the maximum size of a value. The
// encrypted record is about 4/3 of the value size.
const MaxValueSize = 1 * mem.MiB

// Config is a structure containing the dependencies of a Store.
type Config struct {
	// KV is the key-value store that persists the wrapped
	// key and the encrypted records. The Store takes
	// ownership and closes it on Close.
	KV kv.Store

	// Provider wraps and unwraps the symmetric key.
	Provider KeyProvider

	// ErrorLog is the logger for errors and noteworthy
	// events. If nil, slog.Default is used.
	ErrorLog *slog.Logger
}

// Store is a key-value store that encrypts all values with
// a Cipher before persisting them.
//
// A Store is safe for concurrent use.
type Store struct {
	kv       kv.Store
	provider KeyProvider
	log      *slog.Logger

	lock   sync.RWMutex
	cipher *Cipher // nil after Clear until the next Get or Put
	closed bool
}

// Open returns a new Store. It loads or creates the key pair
// and the wrapped symmetric key. If any step fails, Open
// returns an error and no Store.
func Open(ctx context.Context, config *Config) (*Store, error) {
	if config == nil || config.KV == nil {
		return nil, NewError(Usage, "keychain: no key-value store specified")
	}
	if config.Provider == nil {
		return nil, NewError(Usage, "keychain: no key provider specified")
	}
	log := config.ErrorLog
	if log == nil {
		log = slog.Default()
	}

	cipher, err := NewCipher(ctx, config.KV, config.Provider, log)
	if err != nil {
		return nil, classify(Init, "keychain: failed to initialize store", err)
	}
	return &Store{
		kv:       config.KV,
		provider: config.Provider,
		log:      log,
		cipher:   cipher,
	}, nil
}

// Provider returns the name of the Store's key provider.
func (s *Store) Provider() string { return s.provider.Name() }

// Status returns the state of the underlying key-value store.
func (s *Store) Status(ctx context.Context) (kv.State, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.closed {
		return kv.State{}, ErrClosed
	}
	return s.kv.Status(ctx)
}

// Get returns the decrypted value of the given key. It
// returns false if no value exists for the key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	cipher, unlock, err := s.acquire(ctx)
	if err != nil {
		return "", false, err
	}
	defer unlock()

	ciphertext, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotExists) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	value, err := cipher.Decrypt(ciphertext)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put encrypts the value and stores it under the given key,
// replacing any existing value. It returns ErrValueTooLarge
// if the value exceeds MaxValueSize.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if mem.Size(len(value)) > MaxValueSize {
		return ErrValueTooLarge
	}
	cipher, unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	ciphertext, err := cipher.Encrypt(value)
	if err != nil {
		return err
	}
	if err = s.kv.Set(ctx, key, ciphertext); errors.Is(err, kv.ErrTooLarge) {
		return ErrValueTooLarge
	}
	return err
}

// Remove removes the value of the given key. Removing a
// key that does not exist is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, kv.ErrNotExists) {
		return err
	}
	return nil
}

// Clear removes all entries, including the wrapped key.
// Values stored before Clear can no longer be decrypted.
// The next Get or Put generates a new symmetric key.
func (s *Store) Clear(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.kv.Clear(ctx); err != nil {
		return err
	}
	s.cipher = nil
	s.log.InfoContext(ctx, "keychain: cleared store", slog.String("provider", s.provider.Name()))
	return nil
}

// Close closes the Store and its underlying key-value store.
// If the provider implements io.Closer, it is closed as well.
// Any subsequent operation returns ErrClosed.
func (s *Store) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cipher = nil

	err := s.kv.Close()
	if c, ok := s.provider.(io.Closer); ok {
		if cErr := c.Close(); err == nil {
			err = cErr
		}
	}
	return err
}

// acquire returns the current cipher while holding a read
// lock. If the cipher has been discarded by Clear, acquire
// first re-initializes it under the write lock.
func (s *Store) acquire(ctx context.Context) (*Cipher, func(), error) {
	for {
		s.lock.RLock()
		if s.closed {
			s.lock.RUnlock()
			return nil, nil, ErrClosed
		}
		if s.cipher != nil {
			return s.cipher, s.lock.RUnlock, nil
		}
		s.lock.RUnlock()

		if err := s.init(ctx); err != nil {
			return nil, nil, err
		}
	}
}

func (s *Store) init(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.cipher != nil {
		return nil
	}
	cipher, err := NewCipher(ctx, s.kv, s.provider, s.log)
	if err != nil {
		return classify(Init, "keychain: failed to initialize store", err)
	}
	s.cipher = cipher
	return nil
}

func checkKey(key string) error {
	if key == WrappedKeyName {
		return ErrReservedKey
	}
	return nil
}
