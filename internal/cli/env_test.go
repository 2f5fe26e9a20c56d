// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import "testing"

var parseEndpointTests = []struct {
	Endpoint   string
	Want       string
	ShouldFail bool
}{
	{Endpoint: "127.0.0.1:7373", Want: "http://127.0.0.1:7373"},              // 0
	{Endpoint: "http://localhost:7373/", Want: "http://localhost:7373"},      // 1
	{Endpoint: " https://example.com:443 ", Want: "https://example.com:443"}, // 2
	{Endpoint: "[::1]:7373", Want: "http://[::1]:7373"},                      // 3
	{Endpoint: "example.com", ShouldFail: true},                              // 4
	{Endpoint: "https://", ShouldFail: true},                                 // 5
}

func TestParseEndpoint(t *testing.T) {
	for i, test := range parseEndpointTests {
		endpoint, err := ParseEndpoint(test.Endpoint)
		if err == nil && test.ShouldFail {
			t.Fatalf("Test %d: should fail but passed", i)
		}
		if err != nil && !test.ShouldFail {
			t.Fatalf("Test %d: failed to parse endpoint: %v", i, err)
		}
		if !test.ShouldFail && endpoint != test.Want {
			t.Fatalf("Test %d: got '%s' - want '%s'", i, endpoint, test.Want)
		}
	}
}
