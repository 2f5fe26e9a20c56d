// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package keychain implements an envelope-encrypted
// key-value store.
//
// A KeyProvider holds an asymmetric key pair inside a
// protected boundary, like an OS keystore, an HSM-backed
// KMS or Vault. It wraps a random 16 byte AES key that
// is persisted, base64-encoded, under WrappedKeyName
// in the same kv.Store as the application values.
//
// Each value is encrypted with AES-CBC and PKCS #7
// padding under a fresh random IV and stored as
// base64(IV || ciphertext).
//
//	store, err := keychain.Open(ctx, &keychain.Config{
//		KV:       &mem.Store{},
//		Provider: provider,
//	})
//	if err != nil {
//		// handle error
//	}
//	defer store.Close()
//
//	if err = store.Put(ctx, "token", "s3cr3t"); err != nil {
//		// handle error
//	}
//	token, ok, err := store.Get(ctx, "token")
//
// Records are encrypted but not authenticated.
package keychain
