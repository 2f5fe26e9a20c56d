// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import (
	"strings"
	"testing"
)

var startupMessageTests = []struct {
	Startup  Startup
	Contains []string
	Excludes []string
}{
	{ // 0
		Startup: Startup{Addr: "127.0.0.1:7373", Store: "mem", Provider: "soft"},
		Contains: []string{
			"http://127.0.0.1:7373",
			"soft",
			"[ disabled ]",
		},
		Excludes: []string{EnvAPIToken, "unavailable"},
	},
	{ // 1
		Startup:  Startup{Addr: ":7373", TLS: true, Provider: "vault", Token: true},
		Contains: []string{"https://127.0.0.1:7373", "[ unavailable ]", EnvAPIToken},
		Excludes: []string{"[ disabled ]"},
	},
}

func TestStartupMessage(t *testing.T) {
	for i, test := range startupMessageTests {
		msg := StartupMessage(&test.Startup)
		for _, s := range test.Contains {
			if !strings.Contains(msg, s) {
				t.Fatalf("Test %d: message does not contain '%s':\n%s", i, s, msg)
			}
		}
		for _, s := range test.Excludes {
			if strings.Contains(msg, s) {
				t.Fatalf("Test %d: message contains '%s':\n%s", i, s, msg)
			}
		}
	}
}
