// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package headers defines common HTTP headers.
package headers

// Commonly used HTTP headers.
const (
	Accept        = "Accept"        // RFC 2616
	Authorization = "Authorization" // RFC 2616
	ContentType   = "Content-Type"  // RFC 2616
	ContentLength = "Content-Length"
)

// Commonly used HTTP content type values.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
)
