// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package sys

import (
	"runtime/debug"
	"testing"
)

var readBinaryInfoTests = []struct {
	Info     *debug.BuildInfo
	Version  string
	CommitID string
}{
	{ // 0
		Info:     nil,
		Version:  "v0.0.0-dev",
		CommitID: "<unknown>",
	},
	{ // 1
		Info:     &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
		Version:  "v0.0.0-dev",
		CommitID: "<unknown>",
	},
	{ // 2
		Info:     &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}},
		Version:  "v1.2.3",
		CommitID: "<unknown>",
	},
	{ // 3
		Info: &debug.BuildInfo{
			Main: debug.Module{Version: "v1.2.3"},
			Settings: []debug.BuildSetting{
				{Key: "-tags", Value: "fips,version=v1.4.0"},
				{Key: "vcs.revision", Value: "4a3b2c1d"},
			},
		},
		Version:  "v1.4.0",
		CommitID: "4a3b2c1d",
	},
	{ // 4
		Info: &debug.BuildInfo{
			Settings: []debug.BuildSetting{
				{Key: "-tags", Value: "version=latest"},
			},
		},
		Version:  "v0.0.0-dev",
		CommitID: "<unknown>",
	},
}

func TestReadBinaryInfo(t *testing.T) {
	for i, test := range readBinaryInfoTests {
		info := readBinaryInfo(test.Info)
		if info.Version != test.Version {
			t.Fatalf("Test %d: invalid version: got '%s' - want '%s'", i, info.Version, test.Version)
		}
		if info.CommitID != test.CommitID {
			t.Fatalf("Test %d: invalid commit ID: got '%s' - want '%s'", i, info.CommitID, test.CommitID)
		}
		if info.GoVersion == "" {
			t.Fatalf("Test %d: Go version is empty", i)
		}
	}
}
