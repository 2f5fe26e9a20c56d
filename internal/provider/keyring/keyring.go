// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package keyring implements a key provider that keeps the
// key pair in an OS credential store, like the macOS Keychain,
// the Secret Service, KWallet or the Windows Credential Manager.
package keyring

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/99designs/keyring"
	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/crypto"
	"github.com/minio/keychain/internal/provider"
)

// Config is a structure containing the OS keyring configuration.
type Config struct {
	// Service is the service name used by keyring
	// backends that group items by service.
	Service string

	// Backends is the list of allowed keyring backends,
	// in order of preference. If empty, all backends
	// available on the OS are considered.
	Backends []string

	// FileDir is the directory of the encrypted file
	// backend.
	FileDir string

	// FilePassword is the password of the encrypted
	// file backend.
	FilePassword string
}

// Open opens the OS keyring described by the config.
func Open(config *Config) (keyring.Keyring, error) {
	var backends []keyring.BackendType
	for _, b := range config.Backends {
		backends = append(backends, keyring.BackendType(b))
	}
	ring, err := keyring.Open(keyring.Config{
		AllowedBackends:          backends,
		ServiceName:              config.Service,
		KeychainTrustApplication: true,
		KWalletAppID:             config.Service,
		KWalletFolder:            config.Service,
		LibSecretCollectionName:  config.Service,
		FileDir:                  config.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(config.FilePassword),
	})
	if err != nil {
		return nil, keychain.WrapError(keychain.KeyBoundary, "keyring: failed to open keyring", err)
	}
	return ring, nil
}

// Provider is a key provider that stores the key pair
// as a keyring item.
type Provider struct {
	ring     keyring.Keyring
	alias    string
	presence keychain.PresenceFunc
	log      *slog.Logger

	lock    sync.Mutex
	keyPair *crypto.KeyPair
}

var _ keychain.KeyProvider = (*Provider)(nil)

// New returns a new Provider that stores the key pair as
// item with the given alias. The presence function and
// logger may be nil.
func New(ring keyring.Keyring, alias string, presence keychain.PresenceFunc, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		ring:     ring,
		alias:    alias,
		presence: presence,
		log:      log,
	}
}

// Name returns "keyring".
func (p *Provider) Name() string { return "keyring" }

// LoadOrCreate loads the key pair from the keyring item
// or generates a new key pair and stores it.
func (p *Provider) LoadOrCreate(ctx context.Context) error {
	_, err := p.load(ctx, true)
	return err
}

// Wrap encrypts the key with the public key.
func (p *Provider) Wrap(ctx context.Context, key []byte) ([]byte, error) {
	kp, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return provider.Wrap("keyring", kp, key)
}

// Unwrap decrypts the wrapped key with the private key.
func (p *Provider) Unwrap(ctx context.Context, wrapped []byte, algorithm string) ([]byte, error) {
	if err := provider.CheckAlgorithm("keyring", algorithm); err != nil {
		return nil, err
	}
	kp, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return provider.Unwrap(ctx, "keyring", kp, p.presence, wrapped, algorithm)
}

func (p *Provider) load(ctx context.Context, create bool) (*crypto.KeyPair, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.keyPair != nil {
		return p.keyPair, nil
	}

	item, err := p.ring.Get(p.alias)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		if !create {
			return nil, keychain.ErrNoKeyPair
		}
		return p.create(ctx)
	}
	if err != nil {
		return nil, keychain.WrapError(keychain.KeyBoundary, "keyring: failed to read key pair", err)
	}

	kp, err := provider.ParseKeyPair("keyring", item.Data, nil)
	if err != nil {
		return nil, err
	}
	p.keyPair = kp
	return kp, nil
}

func (p *Provider) create(ctx context.Context) (*crypto.KeyPair, error) {
	kp, err := crypto.GenerateKeyPair(p.alias, keychain.KeyPairLifetime)
	if err != nil {
		return nil, keychain.WrapError(keychain.KeyBoundary, "keyring: failed to generate key pair", err)
	}
	data, err := kp.MarshalPEM(nil)
	if err != nil {
		return nil, err
	}
	err = p.ring.Set(keyring.Item{
		Key:                       p.alias,
		Data:                      data,
		Label:                     p.alias,
		Description:               "keychain key pair",
		KeychainNotSynchronizable: true,
	})
	if err != nil {
		return nil, keychain.WrapError(keychain.KeyBoundary, "keyring: failed to store key pair", err)
	}
	p.log.InfoContext(ctx, "keyring: created key pair", slog.String("alias", p.alias))

	p.keyPair = kp
	return kp, nil
}
