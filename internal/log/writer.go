// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package log

import (
	"io"
	"slices"
	"sync"
)

// multiWriter is an io.Writer that writes the same data
// to multiple io.Writer sequentually. A multiWriter may
// be shared and concurrently modified by multiple go
// routines.
//
// In contrast to the io.MultiWriter, it keeps writing
// to all io.Writers even when one or multiple io.Writers
// return a non-nil error.
type multiWriter struct {
	lock    sync.RWMutex
	writers []io.Writer
}

func (mw *multiWriter) Add(out ...io.Writer) {
	mw.lock.Lock()
	defer mw.lock.Unlock()

	for _, o := range out {
		if o == nil || o == io.Discard || slices.Contains(mw.writers, o) {
			continue
		}
		mw.writers = append(mw.writers, o)
	}
}

func (mw *multiWriter) Len() int {
	mw.lock.RLock()
	defer mw.lock.RUnlock()
	return len(mw.writers)
}

func (mw *multiWriter) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	mw.lock.RLock()
	defer mw.lock.RUnlock()

	for _, w := range mw.writers {
		nn, wErr := w.Write(p)
		if err == nil && wErr != nil {
			err, n = wErr, nn
		}
		if err == nil && nn != len(p) {
			err, n = io.ErrShortWrite, nn
		}
	}
	if err != nil {
		return n, err
	}
	return len(p), nil
}
