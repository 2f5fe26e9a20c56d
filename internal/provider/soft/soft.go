// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package soft implements a software key provider.
//
// The key pair is generated and used in process. It is either
// ephemeral or persisted as PEM file whose private key may be
// sealed with a passphrase. The soft provider does not protect
// the private key from other code running with the same
// privileges and should be used when no OS keystore, KMS or
// Vault is available.
package soft

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"aead.dev/mem"
	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/crypto"
	"github.com/minio/keychain/internal/provider"
)

// Config is a structure containing the soft provider configuration.
type Config struct {
	// Alias is the name of the key pair.
	Alias string

	// Dir is the directory containing the key pair file.
	// If empty, the key pair is only kept in memory.
	Dir string

	// Passphrase seals the private key on disk. If empty,
	// the private key is stored unencrypted.
	Passphrase []byte

	// Presence, if not nil, is called before every
	// private key operation.
	Presence keychain.PresenceFunc

	// ErrorLog is used for warnings. If nil, slog.Default
	// is used.
	ErrorLog *slog.Logger
}

// Provider is a software key provider.
type Provider struct {
	alias      string
	filename   string
	passphrase []byte
	presence   keychain.PresenceFunc
	log        *slog.Logger

	lock    sync.Mutex
	keyPair *crypto.KeyPair
}

var _ keychain.KeyProvider = (*Provider)(nil)

// New returns a new soft Provider.
func New(config *Config) (*Provider, error) {
	if config.Alias == "" {
		return nil, keychain.NewError(keychain.Usage, "soft: no key alias specified")
	}
	log := config.ErrorLog
	if log == nil {
		log = slog.Default()
	}

	p := &Provider{
		alias:      config.Alias,
		passphrase: append([]byte(nil), config.Passphrase...),
		presence:   config.Presence,
		log:        log,
	}
	if config.Dir != "" {
		if err := os.MkdirAll(config.Dir, 0o700); err != nil {
			return nil, err
		}
		p.filename = filepath.Join(config.Dir, config.Alias+".pem")
	}
	return p, nil
}

// Name returns "soft".
func (p *Provider) Name() string { return "soft" }

// LoadOrCreate loads the key pair from its file or
// generates and persists a new one.
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
	return provider.Wrap("soft", kp, key)
}

// Unwrap decrypts the wrapped key with the private key.
func (p *Provider) Unwrap(ctx context.Context, wrapped []byte, algorithm string) ([]byte, error) {
	if err := provider.CheckAlgorithm("soft", algorithm); err != nil {
		return nil, err
	}
	kp, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return provider.Unwrap(ctx, "soft", kp, p.presence, wrapped, algorithm)
}

// load returns the key pair. If it does not exist and
// create is true, load generates a new key pair.
func (p *Provider) load(ctx context.Context, create bool) (*crypto.KeyPair, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.keyPair != nil {
		return p.keyPair, nil
	}
	if p.filename == "" {
		if !create {
			return nil, keychain.ErrNoKeyPair
		}
		kp, err := crypto.GenerateKeyPair(p.alias, keychain.KeyPairLifetime)
		if err != nil {
			return nil, keychain.WrapError(keychain.KeyBoundary, "soft: failed to generate key pair", err)
		}
		p.log.WarnContext(ctx, "soft: using ephemeral key pair: stored values become unreadable once the process exits", slog.String("alias", p.alias))
		p.keyPair = kp
		return kp, nil
	}

	kp, err := p.readFile()
	if errors.Is(err, os.ErrNotExist) && create {
		if kp, err = p.createFile(ctx); errors.Is(err, os.ErrExist) {
			kp, err = p.readFile()
		}
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, keychain.ErrNoKeyPair
	}
	if err != nil {
		return nil, err
	}
	p.keyPair = kp
	return kp, nil
}

func (p *Provider) readFile() (*crypto.KeyPair, error) {
	const MaxSize = 64 * mem.KiB

	file, err := os.Open(p.filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(mem.LimitReader(file, MaxSize))
	if err != nil {
		return nil, err
	}
	return provider.ParseKeyPair("soft", data, p.passphrase)
}

func (p *Provider) createFile(ctx context.Context) (*crypto.KeyPair, error) {
	kp, err := crypto.GenerateKeyPair(p.alias, keychain.KeyPairLifetime)
	if err != nil {
		return nil, keychain.WrapError(keychain.KeyBoundary, "soft: failed to generate key pair", err)
	}
	data, err := kp.MarshalPEM(p.passphrase)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(p.filename, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err = file.Write(data); err != nil {
		os.Remove(p.filename)
		return nil, err
	}
	if err = file.Sync(); err != nil {
		os.Remove(p.filename)
		return nil, err
	}
	if len(p.passphrase) == 0 {
		p.log.WarnContext(ctx, "soft: private key is stored unencrypted", slog.String("path", p.filename))
	}
	p.log.InfoContext(ctx, "soft: created key pair", slog.String("alias", p.alias), slog.String("path", p.filename))
	return kp, nil
}
