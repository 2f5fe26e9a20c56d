// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	for i, test := range configPathTests {
		t.Setenv(EnvConfig, test.Env)

		path, err := ConfigPath(test.Flag)
		if err == nil && test.ShouldFail {
			t.Fatalf("Test %d: should fail but passed", i)
		}
		if err != nil && !test.ShouldFail {
			t.Fatalf("Test %d: failed to find config path: %v", i, err)
		}
		if want := filepath.FromSlash(test.Path); !test.ShouldFail && path != want && path != filepath.Join(home, want) {
			t.Fatalf("Test %d: got '%s' - want '%s'", i, path, want)
		}
	}
}

var configPathTests = []struct {
	Flag       string
	Env        string
	Path       string // relative to $HOME if not absolute
	ShouldFail bool
}{
	{ // 0
		Path: ".keychain/config.yml",
	},
	{ // 1
		Flag: "/etc/keychain/config.yml",
		Env:  "/opt/keychain.yml",
		Path: "/etc/keychain/config.yml",
	},
	{ // 2
		Env:  "/opt/keychain.yml",
		Path: "/opt/keychain.yml",
	},
	{ // 3
		Flag: "~/keychain.yml",
		Path: "keychain.yml",
	},
	{ // 4
		Flag:       "~other/keychain.yml",
		ShouldFail: true,
	},
}
