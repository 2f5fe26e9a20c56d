// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package keychainconf reads keychain server configuration
// files and connects the configured key-value store and
// key provider.
package keychainconf

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/https"
	"github.com/minio/keychain/internal/kv/file"
	"github.com/minio/keychain/internal/kv/fs"
	"github.com/minio/keychain/internal/kv/mem"
	"github.com/minio/keychain/internal/log"
	"github.com/minio/keychain/internal/provider/aws"
	"github.com/minio/keychain/internal/provider/keyring"
	"github.com/minio/keychain/internal/provider/soft"
	"github.com/minio/keychain/internal/provider/vault"
	"github.com/minio/keychain/kv"
	yaml "gopkg.in/yaml.v3"
)

// ReadFile opens the given file and reads the keychain configuration
// from it by calling ReadFrom.
func ReadFile(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close() // make sure to close file in case of panic

	file, err := ReadFrom(f)
	if cErr := f.Close(); err == nil {
		err = cErr
	}
	return file, err
}

// ReadFrom parses and returns a new keychain configuration file
// from r.
func ReadFrom(r io.Reader) (*File, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		return nil, err
	}

	version, err := findVersion(&node)
	if err != nil {
		return nil, err
	}
	const Version = "v1"
	if version != "" && version != Version {
		return nil, fmt.Errorf("keychainconf: invalid config version '%s'", version)
	}

	var y ymlFile
	if err := node.Decode(&y); err != nil {
		return nil, err
	}
	return ymlToFile(&y)
}

// File is a structure that holds the content of a keychain
// configuration file.
type File struct {
	// Addr is the network interface address and
	// port the server listens on, e.g. "127.0.0.1:7373".
	Addr string

	// AppID identifies the application owning the
	// store. The key pair alias is derived from it.
	AppID string

	// TLS contains the server TLS configuration.
	// If nil, the server accepts plain HTTP.
	TLS *TLSConfig

	// API contains the API configuration.
	API *APIConfig

	// Log contains the logging configuration.
	Log *LogConfig

	// Store is the key-value store configuration.
	Store KVStore

	// Provider is the key provider configuration.
	Provider KeyProvider
}

// TLSConfig returns a new TLS configuration as specified by
// the File. It returns nil and no error if File.TLS is nil.
func (f *File) TLSConfig() (*tls.Config, error) {
	if f.TLS == nil {
		return nil, nil
	}

	certificate, err := https.CertificateFromFile(f.TLS.Certificate, f.TLS.PrivateKey, f.TLS.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to read TLS certificate: %v", err)
	}
	if certificate.Leaf != nil {
		if len(certificate.Leaf.DNSNames) == 0 && len(certificate.Leaf.IPAddresses) == 0 {
			// Go does not verify certificates with only a subject CN.
			// Ref: https://go.dev/doc/go1.15#commonname
			return nil, errors.New("invalid TLS certificate: certificate does not contain any DNS or IP address as SAN")
		}
	}

	var rootCAs *x509.CertPool
	if f.TLS.CAPath != "" {
		rootCAs, err = https.CertPoolFromFile(f.TLS.CAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read TLS CA certificates: %v", err)
		}
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{certificate},
		NextProtos:   []string{"h2", "http/1.1"},
		RootCAs:      rootCAs,
	}, nil
}

// Open connects to the key-value store and the key provider
// and opens a keychain.Store on top of them. If errorLog is
// nil, slog.Default is used.
func (f *File) Open(ctx context.Context, errorLog *slog.Logger) (*keychain.Store, error) {
	if f.Store == nil {
		return nil, errors.New("keychainconf: no store specified")
	}
	if f.Provider == nil {
		return nil, errors.New("keychainconf: no provider specified")
	}
	if errorLog == nil {
		errorLog = slog.Default()
	}

	store, err := f.Store.Connect(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := f.Provider.Connect(ctx, keychain.KeyAlias(f.AppID), errorLog)
	if err != nil {
		store.Close()
		return nil, err
	}

	s, err := keychain.Open(ctx, &keychain.Config{
		KV:       store,
		Provider: provider,
		ErrorLog: errorLog,
	})
	if err != nil {
		store.Close()
		if c, ok := provider.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	return s, nil
}

// TLSConfig is a structure that holds the server TLS
// configuration.
type TLSConfig struct {
	// PrivateKey is the path to the server's TLS private key.
	PrivateKey string

	// Certificate is the path to the server's TLS certificate.
	Certificate string

	// Password is an optional password to decrypt the
	// server's private key.
	Password string

	// CAPath is an optional path to a X.509 certificate or
	// directory containing X.509 certificates.
	CAPath string
}

// APIConfig is a structure that holds the API configuration.
type APIConfig struct {
	// Token is the bearer token clients have to present.
	// If empty, requests are not authenticated.
	Token string
}

// LogConfig is a structure that holds the logging configuration.
type LogConfig struct {
	Level  slog.Level
	Format log.Format
}

// KVStore is a key-value store configuration.
//
// Concrete instances implement Connect to return
// a connection to a concrete key-value store.
type KVStore interface {
	// Connect establishes and returns a new connection
	// to the key-value store.
	Connect(ctx context.Context) (kv.Store, error)
}

// KeyProvider is a key provider configuration.
//
// Concrete instances implement Connect to return a
// key provider holding the key pair with the given alias.
type KeyProvider interface {
	Connect(ctx context.Context, alias string, errorLog *slog.Logger) (keychain.KeyProvider, error)
}

// MemStore is an in-memory key-value store. Its
// content is lost when the server stops.
type MemStore struct{}

// Connect returns a new, empty in-memory kv.Store.
func (s *MemStore) Connect(context.Context) (kv.Store, error) { return &mem.Store{}, nil }

// FSStore is a key-value store that keeps one file
// per entry in a directory.
type FSStore struct {
	// Path is the directory containing the entries.
	// If it does not exist, it will be created.
	Path string

	// Namespace is an optional sub-directory.
	Namespace string
}

// Connect returns a kv.Store that stores key-value pairs in a path on the filesystem.
func (s *FSStore) Connect(context.Context) (kv.Store, error) {
	return fs.Open(s.Path, s.Namespace)
}

// FileStore is a key-value store that keeps all
// entries in a single file.
type FileStore struct {
	Path      string
	Namespace string
}

// Connect returns a kv.Store backed by a single file.
func (s *FileStore) Connect(context.Context) (kv.Store, error) {
	return file.Open(s.Path, s.Namespace)
}

// SoftProvider is a software key provider configuration.
//
// A SoftProvider should only be used when no hardware-backed
// provider is available.
type SoftProvider struct {
	// Path is the directory containing the key pair file.
	// If empty, the key pair is ephemeral.
	Path string

	// Passphrase seals the private key on disk.
	Passphrase string
}

// Connect returns a new soft key provider.
func (p *SoftProvider) Connect(_ context.Context, alias string, errorLog *slog.Logger) (keychain.KeyProvider, error) {
	return soft.New(&soft.Config{
		Alias:      alias,
		Dir:        p.Path,
		Passphrase: []byte(p.Passphrase),
		ErrorLog:   errorLog,
	})
}

// KeyringProvider is an OS keyring key provider configuration.
type KeyringProvider struct {
	// Service is the keyring service name.
	Service string

	// Backends is the list of allowed keyring backends.
	// If empty, any backend available on the OS is used.
	Backends []string

	// FileDir and FilePassword configure the encrypted
	// file backend.
	FileDir      string
	FilePassword string
}

// Connect opens the OS keyring and returns a key provider
// that stores the key pair as keyring item.
func (p *KeyringProvider) Connect(_ context.Context, alias string, errorLog *slog.Logger) (keychain.KeyProvider, error) {
	service := p.Service
	if service == "" {
		service = alias
	}
	ring, err := keyring.Open(&keyring.Config{
		Service:      service,
		Backends:     p.Backends,
		FileDir:      p.FileDir,
		FilePassword: p.FilePassword,
	})
	if err != nil {
		return nil, err
	}
	return keyring.New(ring, alias, nil, errorLog), nil
}

// AWSProvider is an AWS KMS key provider configuration.
type AWSProvider struct {
	// Endpoint is the AWS KMS endpoint.
	Endpoint string

	// Region is the AWS region.
	Region string

	// AccessKey, SecretKey and SessionToken are optional
	// static credentials.
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// Connect returns a key provider backed by AWS KMS.
func (p *AWSProvider) Connect(_ context.Context, alias string, errorLog *slog.Logger) (keychain.KeyProvider, error) {
	return aws.Connect(&aws.Config{
		Endpoint: p.Endpoint,
		Region:   p.Region,
		Login: aws.Credentials{
			AccessKey:    p.AccessKey,
			SecretKey:    p.SecretKey,
			SessionToken: p.SessionToken,
		},
		Alias:    alias,
		ErrorLog: errorLog,
	})
}

// VaultProvider is a Hashicorp Vault transit key provider
// configuration.
type VaultProvider struct {
	// Endpoint is the Hashicorp Vault endpoint.
	Endpoint string

	// Namespace is an optional Hashicorp Vault namespace.
	Namespace string

	// Engine is the transit engine path. If empty,
	// defaults to "transit".
	Engine string

	// KeyName is the transit key name. If empty, the
	// key pair alias is used.
	KeyName string

	// Token is a static Vault token.
	Token string

	AppRole    *VaultAppRole
	Kubernetes *VaultKubernetes

	// Paths to the mTLS client key, certificate and
	// the Vault CA certificates.
	PrivateKey  string
	Certificate string
	CAPath      string

	// StatusPing is the interval in which the seal
	// status is checked.
	StatusPing time.Duration
}

// VaultAppRole contains the Vault AppRole credentials.
type VaultAppRole struct {
	Engine    string
	Namespace string
	ID        string
	Secret    string
}

// VaultKubernetes contains the Vault Kubernetes credentials.
type VaultKubernetes struct {
	Engine    string
	Namespace string
	Role      string
	JWT       string
}

// Connect authenticates to Hashicorp Vault and returns a key
// provider backed by the transit engine.
func (p *VaultProvider) Connect(ctx context.Context, alias string, errorLog *slog.Logger) (keychain.KeyProvider, error) {
	keyName := p.KeyName
	if keyName == "" {
		keyName = alias
	}
	c := &vault.Config{
		Endpoint:        p.Endpoint,
		Namespace:       p.Namespace,
		Engine:          p.Engine,
		KeyName:         keyName,
		Token:           p.Token,
		PrivateKey:      p.PrivateKey,
		Certificate:     p.Certificate,
		CAPath:          p.CAPath,
		StatusPingAfter: p.StatusPing,
		ErrorLog:        errorLog,
	}
	if p.AppRole != nil {
		c.AppRole = &vault.AppRole{
			Engine:    p.AppRole.Engine,
			Namespace: p.AppRole.Namespace,
			ID:        p.AppRole.ID,
			Secret:    p.AppRole.Secret,
		}
	}
	if p.Kubernetes != nil {
		c.K8S = &vault.Kubernetes{
			Engine:    p.Kubernetes.Engine,
			Namespace: p.Kubernetes.Namespace,
			Role:      p.Kubernetes.Role,
			JWT:       p.Kubernetes.JWT,
		}
	}
	return vault.Connect(ctx, c)
}
