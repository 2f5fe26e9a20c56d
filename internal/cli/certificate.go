// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"github.com/minio/keychain/internal/https"
)

// TLSConfigFromEnv returns the client TLS configuration. It
// trusts the CA certificates at EnvCAPath, if set, in addition
// to the system root CAs.
func TLSConfigFromEnv(insecureSkipVerify bool) (*tls.Config, error) {
	config := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify,
	}

	caPath, ok := os.LookupEnv(EnvCAPath)
	if !ok || strings.TrimSpace(caPath) == "" {
		return config, nil
	}
	rootCAs, err := https.CertPoolFromFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load CA certificates from '%s': %v", caPath, err)
	}
	config.RootCAs = rootCAs
	return config, nil
}
