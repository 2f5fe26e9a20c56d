// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package vault implements a key provider that keeps
// the key pair as RSA key of the Hashicorp Vault transit
// secret engine. The private key never leaves Vault.
//
// Ref: https://developer.hashicorp.com/vault/api-docs/secret/transit
package vault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"sync"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/provider"
)

var errSealed = keychain.NewError(keychain.KeyBoundary, "vault: vault is sealed")

// Provider is a Hashicorp Vault transit key provider.
type Provider struct {
	client *client
	config *Config
	log    *slog.Logger
	stop   context.CancelFunc

	lock   sync.Mutex
	loaded bool
}

var _ keychain.KeyProvider = (*Provider)(nil)

// Connect connects and authenticates to the Vault server.
// It starts background goroutines that track the seal status
// and renew the auth token until the Provider is closed.
func Connect(ctx context.Context, c *Config) (*Provider, error) {
	c = c.Clone()

	if c.Engine == "" {
		c.Engine = EngineTransit
	}
	if c.AppRole != nil && c.AppRole.Engine == "" {
		c.AppRole.Engine = EngineAppRole
	}
	if c.K8S != nil && c.K8S.Engine == "" {
		c.K8S.Engine = EngineKubernetes
	}
	if c.StatusPingAfter == 0 {
		c.StatusPingAfter = 15 * time.Second
	}
	log := c.ErrorLog
	if log == nil {
		log = slog.Default()
	}

	if c.Endpoint == "" {
		return nil, errors.New("vault: endpoint is empty")
	}
	if c.KeyName == "" {
		return nil, errors.New("vault: transit key name is empty")
	}
	hasAppRole := c.AppRole != nil && (c.AppRole.ID != "" || c.AppRole.Secret != "")
	hasK8S := c.K8S != nil && (c.K8S.Role != "" || c.K8S.JWT != "")
	if hasAppRole && hasK8S {
		return nil, errors.New("vault: more than one authentication method specified: approle and kubernetes configuration is present")
	}
	if !hasAppRole && !hasK8S && c.Token == "" {
		return nil, errors.New("vault: no authentication method specified")
	}

	tlsConfig := &vaultapi.TLSConfig{
		ClientKey:  c.PrivateKey,
		ClientCert: c.Certificate,
	}
	if c.CAPath != "" {
		stat, err := os.Stat(c.CAPath)
		if err != nil {
			return nil, fmt.Errorf("vault: failed to open '%s': %v", c.CAPath, err)
		}
		if stat.IsDir() {
			tlsConfig.CAPath = c.CAPath
		} else {
			tlsConfig.CACert = c.CAPath
		}
	}

	config := vaultapi.DefaultConfig()
	config.Address = c.Endpoint
	config.CloneToken = true // Required for status checks
	config.MaxRetries = 1
	if err := config.ConfigureTLS(tlsConfig); err != nil {
		return nil, err
	}
	if tr, ok := config.HttpClient.Transport.(*http.Transport); ok {
		tr.DisableKeepAlives = true
		tr.MaxIdleConnsPerHost = -1
	}
	config.HttpClient.Transport = &loggingTransport{
		RoundTripper: config.HttpClient.Transport,
		log:          log,
	}
	vaultClient, err := vaultapi.NewClient(config)
	if err != nil {
		return nil, err
	}
	// The client reads VAULT_TOKEN from the environment.
	// Only explicitly configured credentials are used.
	vaultClient.ClearToken()

	client := &client{
		Client: vaultClient,
		log:    log,
	}
	if c.Namespace != "" {
		client.SetNamespace(c.Namespace)
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Provider{
		client: client,
		config: c,
		log:    log,
		stop:   cancel,
	}

	var authenticate authFunc
	switch {
	case hasAppRole:
		authenticate = client.AuthenticateWithAppRole(c.AppRole)
	case hasK8S:
		authenticate = client.AuthenticateWithK8S(c.K8S)
	default:
		client.SetToken(c.Token)
		go client.CheckStatus(ctx, c.StatusPingAfter)
		return p, nil
	}

	// Log only the first failure after a successful
	// authentication to avoid flooding the log.
	lastAuthSuccess := true
	authenticateLogged := func(ctx context.Context) (*vaultapi.Secret, error) {
		secret, err := authenticate(ctx)
		if err != nil {
			if lastAuthSuccess {
				log.WarnContext(ctx, "vault: authentication failed", slog.Any("err", err))
				lastAuthSuccess = false
			}
			return nil, err
		}
		if secret.Auth != nil {
			log.DebugContext(ctx, "vault: authentication successful", slog.String("token", obfuscateToken(secret.Auth.ClientToken)))
		}
		lastAuthSuccess = true
		return secret, nil
	}

	auth, err := authenticateLogged(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	token, err := auth.TokenID()
	if err != nil {
		cancel()
		return nil, err
	}
	client.SetToken(token)

	go client.CheckStatus(ctx, c.StatusPingAfter)
	go client.RenewToken(ctx, authenticateLogged, auth)
	return p, nil
}

func (p *Provider) String() string { return "Hashicorp Vault: " + p.config.Endpoint }

// Name returns "vault".
func (p *Provider) Name() string { return "vault" }

// Close stops the background goroutines.
func (p *Provider) Close() error {
	p.stop()
	return nil
}

// LoadOrCreate reads the transit key and creates an
// RSA transit key if it does not exist.
func (p *Provider) LoadOrCreate(ctx context.Context) error {
	return p.load(ctx, true)
}

// Wrap encrypts the key with the transit key.
func (p *Provider) Wrap(ctx context.Context, key []byte) ([]byte, error) {
	if err := p.load(ctx, false); err != nil {
		return nil, err
	}
	secret, err := p.client.Logical().WriteWithContext(ctx, path.Join(p.config.Engine, "encrypt", p.config.KeyName), map[string]any{
		"plaintext": base64.StdEncoding.EncodeToString(key),
	})
	if err != nil {
		return nil, p.error(ctx, keychain.Wrap, "vault: failed to wrap key", err)
	}
	ciphertext, ok := dataString(secret, "ciphertext")
	if !ok {
		return nil, keychain.NewError(keychain.Wrap, "vault: invalid encrypt response")
	}
	return []byte(ciphertext), nil
}

// Unwrap decrypts the wrapped key with the transit key.
func (p *Provider) Unwrap(ctx context.Context, wrapped []byte, algorithm string) ([]byte, error) {
	if err := provider.CheckAlgorithm("vault", algorithm); err != nil {
		return nil, err
	}
	if err := p.load(ctx, false); err != nil {
		return nil, err
	}
	secret, err := p.client.Logical().WriteWithContext(ctx, path.Join(p.config.Engine, "decrypt", p.config.KeyName), map[string]any{
		"ciphertext": string(wrapped),
	})
	if err != nil {
		return nil, p.error(ctx, keychain.Wrap, "vault: failed to unwrap key", err)
	}
	plaintext, ok := dataString(secret, "plaintext")
	if !ok {
		return nil, keychain.NewError(keychain.Wrap, "vault: invalid decrypt response")
	}
	key, err := base64.StdEncoding.DecodeString(plaintext)
	if err != nil {
		return nil, keychain.WrapError(keychain.Wrap, "vault: invalid decrypt response", err)
	}
	return key, nil
}

func (p *Provider) load(ctx context.Context, create bool) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.loaded {
		return nil
	}
	if p.client.Sealed() {
		return errSealed
	}

	location := path.Join(p.config.Engine, "keys", p.config.KeyName)
	secret, err := p.client.Logical().ReadWithContext(ctx, location)
	if err != nil {
		return p.error(ctx, keychain.KeyBoundary, "vault: failed to read transit key", err)
	}
	if secret == nil {
		if !create {
			return keychain.ErrNoKeyPair
		}
		// Creating an existing transit key is a no-op.
		// Hence, concurrent creation is safe.
		if _, err = p.client.Logical().WriteWithContext(ctx, location, map[string]any{
			"type": KeyType,
		}); err != nil {
			return p.error(ctx, keychain.KeyBoundary, "vault: failed to create transit key", err)
		}
		if secret, err = p.client.Logical().ReadWithContext(ctx, location); err != nil {
			return p.error(ctx, keychain.KeyBoundary, "vault: failed to read transit key", err)
		}
		if secret == nil {
			return keychain.ErrNoKeyPair
		}
		p.log.InfoContext(ctx, "vault: created transit key", slog.String("key", p.config.KeyName))
	}

	keyType, _ := dataString(secret, "type")
	if keyType != "rsa-2048" && keyType != "rsa-3072" && keyType != "rsa-4096" {
		p.log.ErrorContext(ctx, "vault: transit key is not an RSA key", slog.String("key", p.config.KeyName), slog.String("type", keyType))
		return keychain.ErrNotPrivateKey
	}
	p.loaded = true
	return nil
}

// error logs err and converts it into a keychain error.
func (p *Provider) error(ctx context.Context, kind keychain.Kind, msg string, err error) error {
	var resp *vaultapi.ResponseError
	if errors.As(err, &resp) {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return keychain.ErrNoKeyPair
		case resp.StatusCode == http.StatusServiceUnavailable:
			p.log.ErrorContext(ctx, "vault: vault is sealed or unavailable", slog.Any("err", err))
			return keychain.WrapError(keychain.KeyBoundary, msg, err)
		case resp.StatusCode == http.StatusForbidden:
			p.log.ErrorContext(ctx, "vault: permission denied", slog.Any("err", err))
			return keychain.WrapError(keychain.KeyBoundary, msg, err)
		}
	}
	p.log.ErrorContext(ctx, msg, slog.Any("err", err))
	return keychain.WrapError(kind, msg, err)
}

func dataString(secret *vaultapi.Secret, key string) (string, bool) {
	if secret == nil || secret.Data == nil {
		return "", false
	}
	v, ok := secret.Data[key].(string)
	return v, ok
}
