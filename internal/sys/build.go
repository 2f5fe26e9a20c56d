// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

// Package sys provides information about the running binary.
package sys

import (
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/blang/semver/v4"
)

// BuildInfo contains build information
// about a Go binary.
type BuildInfo struct {
	Version   string
	CommitID  string
	GoVersion string
}

func (b BuildInfo) String() string {
	return b.Version + " (commit=" + b.CommitID + ", go=" + b.GoVersion + ")"
}

// BinaryInfo returns the BuildInfo of the
// binary itself.
//
// The version is taken from a "version=vX.Y.Z" build
// tag, if present and a valid semantic version, or
// from the main module version. It returns some default
// information when no build information has been compiled
// into the binary.
func BinaryInfo() BuildInfo {
	readBinaryOnce.Do(func() {
		info, _ := debug.ReadBuildInfo()
		binaryInfo = readBinaryInfo(info)
	})
	return binaryInfo
}

func readBinaryInfo(info *debug.BuildInfo) BuildInfo {
	const (
		DefaultVersion  = "v0.0.0-dev"
		DefaultCommitID = "<unknown>"
	)
	binaryInfo := BuildInfo{
		Version:   DefaultVersion,
		CommitID:  DefaultCommitID,
		GoVersion: runtime.Version(),
	}
	if info == nil {
		return binaryInfo
	}
	if v, ok := parseVersion(info.Main.Version); ok {
		binaryInfo.Version = v
	}

	const (
		TagKey         = "-tags"
		GitRevisionKey = "vcs.revision"

		VersionTag = "version="
	)
	for _, setting := range info.Settings {
		switch {
		case setting.Key == TagKey:
			for _, tag := range strings.Split(setting.Value, ",") {
				if !strings.HasPrefix(tag, VersionTag) {
					continue
				}
				if v, ok := parseVersion(strings.TrimPrefix(tag, VersionTag)); ok {
					binaryInfo.Version = v
				}
				break
			}
		case setting.Key == GitRevisionKey:
			binaryInfo.CommitID = setting.Value
		}
	}
	return binaryInfo
}

// parseVersion parses s as semantic version and
// returns its canonical "vX.Y.Z" form.
func parseVersion(s string) (string, bool) {
	if s == "" || s == "(devel)" {
		return "", false
	}
	v, err := semver.ParseTolerant(s)
	if err != nil {
		return "", false
	}
	return "v" + v.String(), true
}

var (
	readBinaryOnce sync.Once
	binaryInfo     BuildInfo // protected by the sync.Once above
)
