// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package fips reports whether the binary has been built
// in FIPS mode and restricts TLS parameters accordingly.
//
// Build with the 'fips' tag to enable FIPS mode.
package fips

import "crypto/tls"

// Enabled indicates whether the binary has been built
// in FIPS mode. In FIPS mode, only NIST approved
// primitives, like AES-GCM or P-256, are used for
// sealing key material and for TLS.
const Enabled = enabled

// TLSCiphers returns the TLS cipher suite IDs the
// server accepts.
func TLSCiphers() []uint16 {
	ciphers := []uint16{
		tls.TLS_AES_128_GCM_SHA256, // TLS 1.3
		tls.TLS_AES_256_GCM_SHA384,

		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, // TLS 1.2
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	}
	if !Enabled {
		ciphers = append(ciphers,
			tls.TLS_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		)
	}
	return ciphers
}

// TLSCurveIDs returns the supported elliptic curves
// in preference order.
func TLSCurveIDs() []tls.CurveID {
	curves := []tls.CurveID{tls.CurveP256, tls.CurveP384, tls.CurveP521}
	if !Enabled {
		curves = append([]tls.CurveID{tls.X25519}, curves...)
	}
	return curves
}
