// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package main

import "golang.org/x/sys/unix"

// mlockall locks all current and future memory pages of
// the process into RAM such that key material is never
// swapped to disk.
func mlockall() error { return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE) }
