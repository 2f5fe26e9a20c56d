// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"time"
)

// RSAKeySize is the size of generated RSA keys in bits.
const RSAKeySize = 2048

// PEM block types of an encoded key pair.
const (
	pemCertificate = "CERTIFICATE"
	pemPrivateKey  = "PRIVATE KEY"

	// PEMEncryptedPrivateKey is the PEM type of a PKCS#8
	// private key sealed with a passphrase.
	PEMEncryptedPrivateKey = "KEYCHAIN ENCRYPTED PRIVATE KEY"
)

var (
	// ErrNoPrivateKey is returned by ParseKeyPair when the
	// PEM data does not contain a private key.
	ErrNoPrivateKey = errors.New("crypto: no private key")

	// ErrNoCertificate is returned by ParseKeyPair when the
	// PEM data does not contain a certificate.
	ErrNoCertificate = errors.New("crypto: no certificate")
)

// KeyPair is an RSA private key and the self-signed
// certificate for its public key.
type KeyPair struct {
	PrivateKey  *rsa.PrivateKey
	Certificate *x509.Certificate
}

// GenerateKeyPair generates a new RSA key pair and a self-signed
// certificate with the alias as common name, serial number 1 and
// the given validity period starting now.
func GenerateKeyPair(alias string, lifetime time.Duration) (*KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, RSAKeySize)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: alias},
		NotBefore:             now,
		NotAfter:              now.Add(lifetime),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	raw, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(raw)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		PrivateKey:  key,
		Certificate: cert,
	}, nil
}

// PublicKey returns the RSA public key of the certificate.
func (kp *KeyPair) PublicKey() *rsa.PublicKey { return &kp.PrivateKey.PublicKey }

// MarshalPEM encodes the certificate and private key as PEM.
// If the passphrase is not empty, the private key is sealed
// with a key derived from it.
func (kp *KeyPair) MarshalPEM(passphrase []byte) ([]byte, error) {
	privateKey, err := x509.MarshalPKCS8PrivateKey(kp.PrivateKey)
	if err != nil {
		return nil, err
	}

	block := &pem.Block{Type: pemPrivateKey, Bytes: privateKey}
	if len(passphrase) > 0 {
		sealed, err := Seal(passphrase, privateKey)
		if err != nil {
			return nil, err
		}
		block = &pem.Block{Type: PEMEncryptedPrivateKey, Bytes: sealed}
	}

	b := pem.EncodeToMemory(&pem.Block{Type: pemCertificate, Bytes: kp.Certificate.Raw})
	return append(b, pem.EncodeToMemory(block)...), nil
}

// ParseKeyPair parses a PEM-encoded key pair produced by MarshalPEM.
func ParseKeyPair(data, passphrase []byte) (*KeyPair, error) {
	var (
		cert       *x509.Certificate
		privateKey []byte
		err        error
	)
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		switch block.Type {
		case pemCertificate:
			if cert, err = x509.ParseCertificate(block.Bytes); err != nil {
				return nil, err
			}
		case pemPrivateKey:
			privateKey = block.Bytes
		case PEMEncryptedPrivateKey:
			if privateKey, err = Open(passphrase, block.Bytes); err != nil {
				return nil, err
			}
		}
	}
	if cert == nil {
		return nil, ErrNoCertificate
	}
	if privateKey == nil {
		return nil, ErrNoPrivateKey
	}

	key, err := x509.ParsePKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("crypto: private key is not an RSA key")
	}
	if !rsaKey.PublicKey.Equal(cert.PublicKey) {
		return nil, errors.New("crypto: private key does not match certificate")
	}
	return &KeyPair{
		PrivateKey:  rsaKey,
		Certificate: cert,
	}, nil
}

// WrapKey encrypts the key with the RSA public key using
// RSAES-PKCS1-v1_5.
func WrapKey(pub *rsa.PublicKey, key []byte) ([]byte, error) {
	return rsa.EncryptPKCS1v15(rand.Reader, pub, key)
}

// UnwrapKey decrypts a key wrapped by WrapKey.
func UnwrapKey(priv *rsa.PrivateKey, wrapped []byte) ([]byte, error) {
	return rsa.DecryptPKCS1v15(rand.Reader, priv, wrapped)
}
