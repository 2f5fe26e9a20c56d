// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/awnumar/memguard"
	"github.com/minio/keychain/internal/crypto"
	"github.com/minio/keychain/kv"
	"github.com/secure-io/sio-go/sioutil"
)

// Cipher is an envelope cipher. It encrypts and decrypts
// values with a symmetric key that is persisted, wrapped
// by a KeyProvider, in a kv.Store.
//
// Encrypted records have the form base64(IV || ciphertext)
// where the ciphertext is the AES-CBC encryption of the PKCS #7
// padded UTF-8 plaintext. Records are not authenticated. A
// modified record either fails to decrypt or decrypts to a
// different plaintext.
//
// A Cipher is safe for concurrent use. Each operation opens
// the key into a locked buffer and destroys the buffer when
// done.
type Cipher struct {
	key *memguard.Enclave
}

// NewCipher returns a new Cipher using the symmetric key
// of the store.
//
// If the store contains no wrapped key, NewCipher generates
// a random key, wraps it with the provider and persists it
// under WrappedKeyName. If another party persists a wrapped
// key concurrently, NewCipher uses that key instead.
// Otherwise, NewCipher unwraps the stored key.
func NewCipher(ctx context.Context, store kv.Store, provider KeyProvider, log *slog.Logger) (*Cipher, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := provider.LoadOrCreate(ctx); err != nil {
		return nil, classify(KeyBoundary, "keychain: failed to load key pair", err)
	}

	encoded, err := store.Get(ctx, WrappedKeyName)
	if errors.Is(err, kv.ErrNotExists) {
		var key []byte
		switch key, err = createKey(ctx, store, provider); {
		case err == nil:
			log.InfoContext(ctx, "keychain: created wrapped key", slog.String("provider", provider.Name()))
			return &Cipher{key: memguard.NewEnclave(key)}, nil
		case errors.Is(err, kv.ErrExists):
			// Another party created the wrapped key first.
			encoded, err = store.Get(ctx, WrappedKeyName)
		default:
			return nil, err
		}
	}
	if err != nil {
		return nil, WrapError(Init, "keychain: failed to read wrapped key", err)
	}

	key, err := unwrapKey(ctx, provider, encoded)
	if err != nil {
		log.ErrorContext(ctx, "keychain: failed to unwrap key", slog.String("provider", provider.Name()), slog.Any("err", err))
		return nil, err
	}
	return &Cipher{key: memguard.NewEnclave(key)}, nil
}

// Encrypt encrypts the plaintext under a fresh random IV.
// It returns an error of kind Format if the plaintext is
// not valid UTF-8.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", NewError(Format, "keychain: plaintext is not valid UTF-8")
	}

	key, err := c.key.Open()
	if err != nil {
		return "", WrapError(Init, "keychain: failed to access key", err)
	}
	defer key.Destroy()

	iv, err := sioutil.Random(IVSize)
	if err != nil {
		return "", err
	}
	ciphertext, err := crypto.EncryptCBC(key.Bytes(), iv, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

// Decrypt decrypts a record produced by Encrypt. It returns
// an error of kind Format if the record is malformed. It
// never returns partial plaintext.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	record, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", WrapError(Format, "keychain: record is not valid base64", err)
	}
	if len(record) < IVSize {
		return "", NewError(Format, "keychain: record is too short")
	}
	iv, record := record[:IVSize], record[IVSize:]
	if len(record) == 0 || len(record)%IVSize != 0 {
		return "", NewError(Format, "keychain: record is not a multiple of the block size")
	}

	key, err := c.key.Open()
	if err != nil {
		return "", WrapError(Init, "keychain: failed to access key", err)
	}
	defer key.Destroy()

	plaintext, err := crypto.DecryptCBC(key.Bytes(), iv, record)
	if err != nil {
		return "", WrapError(Format, "keychain: failed to decrypt record", err)
	}
	if !utf8.Valid(plaintext) {
		return "", NewError(Format, "keychain: plaintext is not valid UTF-8")
	}
	return string(plaintext), nil
}

// createKey generates a new symmetric key, wraps it and
// persists the wrapped key. It returns kv.ErrExists if
// a wrapped key has been persisted concurrently.
func createKey(ctx context.Context, store kv.Store, provider KeyProvider) ([]byte, error) {
	key, err := sioutil.Random(KeySize)
	if err != nil {
		return nil, WrapError(Init, "keychain: failed to generate key", err)
	}
	wrapped, err := provider.Wrap(ctx, key)
	if err != nil {
		return nil, classify(Wrap, "keychain: failed to wrap key", err)
	}

	err = store.Create(ctx, WrappedKeyName, base64.StdEncoding.EncodeToString(wrapped))
	if errors.Is(err, kv.ErrExists) {
		return nil, err
	}
	if err != nil {
		return nil, WrapError(Init, "keychain: failed to persist wrapped key", err)
	}
	return key, nil
}

func unwrapKey(ctx context.Context, provider KeyProvider, encoded string) ([]byte, error) {
	wrapped, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, WrapError(Format, "keychain: wrapped key is not valid base64", err)
	}
	key, err := provider.Unwrap(ctx, wrapped, KeyAlgorithm)
	if err != nil {
		return nil, classify(Wrap, "keychain: failed to unwrap key", err)
	}
	if len(key) != KeySize {
		return nil, NewError(Wrap, "keychain: unwrapped key has invalid size")
	}
	return key, nil
}

// classify returns err unchanged if it already is an *Error.
// Otherwise, it wraps err into an Error of the given kind.
func classify(kind Kind, msg string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return WrapError(kind, msg, err)
}
