// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package https

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/minio/keychain/internal/crypto"
)

var (
	testKeyPairOnce sync.Once
	testKeyPair     *crypto.KeyPair
)

func keyPair(t *testing.T) *crypto.KeyPair {
	t.Helper()
	testKeyPairOnce.Do(func() {
		kp, err := crypto.GenerateKeyPair("localhost", time.Hour)
		if err != nil {
			t.Fatalf("Failed to generate key pair: %v", err)
		}
		testKeyPair = kp
	})
	if testKeyPair == nil {
		t.Fatal("No key pair")
	}
	return testKeyPair
}

func writeKeyPair(t *testing.T, passphrase string) string {
	t.Helper()

	b, err := keyPair(t).MarshalPEM([]byte(passphrase))
	if err != nil {
		t.Fatalf("Failed to encode key pair: %v", err)
	}
	filename := filepath.Join(t.TempDir(), "server.pem")
	if err = os.WriteFile(filename, b, 0o600); err != nil {
		t.Fatalf("Failed to write key pair: %v", err)
	}
	return filename
}

var readPrivateKeyTests = []struct {
	Passphrase string
	Password   string
	ShouldFail bool
}{
	{Passphrase: "", Password: ""},                                        // 0
	{Passphrase: "", Password: "ignored_password"},                        // 1
	{Passphrase: "correct_password", Password: "correct_password"},        // 2
	{Passphrase: "correct_password", Password: "", ShouldFail: true},      // 3
	{Passphrase: "correct_password", Password: "wrong", ShouldFail: true}, // 4
}

func TestReadPrivateKey(t *testing.T) {
	for i, test := range readPrivateKeyTests {
		filename := writeKeyPair(t, test.Passphrase)
		_, err := readPrivateKey(filename, test.Password)
		if err != nil && !test.ShouldFail {
			t.Fatalf("Test %d: failed to read private key: %v", i, err)
		}
		if err == nil && test.ShouldFail {
			t.Fatalf("Test %d: reading private key should have failed", i)
		}
	}
}

func TestCertificateFromFile(t *testing.T) {
	filename := writeKeyPair(t, "my-password")

	cert, err := CertificateFromFile(filename, filename, "my-password")
	if err != nil {
		t.Fatalf("Failed to load certificate: %v", err)
	}
	if cert.Leaf == nil || cert.Leaf.Subject.CommonName != "localhost" {
		t.Fatalf("Invalid certificate: %v", cert.Leaf)
	}
	if _, err = readCertificate(filename); err == nil {
		t.Fatal("Reading a certificate from a file containing a private key should have failed")
	}
}

func TestCertPoolFromFile(t *testing.T) {
	kp := keyPair(t)
	dir := t.TempDir()

	certFile := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(certFile, pemCertificate(kp.Certificate), 0o600); err != nil {
		t.Fatalf("Failed to write certificate: %v", err)
	}
	if _, err := CertPoolFromFile(certFile); err != nil {
		t.Fatalf("Failed to load certificate file: %v", err)
	}
	if _, err := CertPoolFromFile(dir); err != nil {
		t.Fatalf("Failed to load certificate directory: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "key.pem"), mustMarshalPEM(t, kp), 0o600); err != nil {
		t.Fatalf("Failed to write key pair: %v", err)
	}
	if _, err := CertPoolFromFile(dir); err == nil {
		t.Fatal("Loading a directory containing a private key should have failed")
	}
	if _, err := CertPoolFromFile(filepath.Join(dir, "missing.pem")); err == nil {
		t.Fatal("Loading a non-existing file should have failed")
	}
}

func TestServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	filename := writeKeyPair(t, "")
	cert, err := CertificateFromFile(filename, filename, "")
	if err != nil {
		t.Fatalf("Failed to load certificate: %v", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	srv := NewServer(&Config{
		Addr: listener.Addr().String(),
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, listener) }()

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		}},
	}
	resp, err := client.Get("https://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Invalid response status: got %d - want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	if err = <-errCh; !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("Server did not shut down gracefully: %v", err)
	}
}

func pemCertificate(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

func mustMarshalPEM(t *testing.T, kp *crypto.KeyPair) []byte {
	b, err := kp.MarshalPEM(nil)
	if err != nil {
		t.Fatalf("Failed to encode key pair: %v", err)
	}
	return b
}
