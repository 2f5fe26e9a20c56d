// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain

import (
	"errors"
	"net/http"
	"testing"
)

var errorStatusTests = []struct {
	Err    *Error
	Status int
}{
	{Err: ErrReservedKey, Status: http.StatusBadRequest},                  // 0
	{Err: ErrFormat, Status: http.StatusUnprocessableEntity},              // 1
	{Err: ErrNoKeyPair, Status: http.StatusForbidden},                     // 2
	{Err: ErrNotPrivateKey, Status: http.StatusForbidden},                 // 3
	{Err: ErrClosed, Status: http.StatusServiceUnavailable},               // 4
	{Err: ErrWrap, Status: http.StatusBadGateway},                         // 5
	{Err: ErrPresence, Status: http.StatusBadGateway},                     // 6
	{Err: &Error{msg: "no kind"}, Status: http.StatusInternalServerError}, // 7
}

func TestErrorStatus(t *testing.T) {
	for i, test := range errorStatusTests {
		if status := test.Err.Status(); status != test.Status {
			t.Fatalf("Test %d: got status '%d' - want '%d'", i, status, test.Status)
		}

		err := errorFromStatus(test.Status, test.Err.Error())
		if test.Err.Kind() == 0 {
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("Test %d: got '%T' - want '%T'", i, err, statusErr)
			}
			continue
		}
		if kind := KindOf(err); kind != test.Err.Kind() {
			t.Fatalf("Test %d: got kind '%v' - want '%v'", i, kind, test.Err.Kind())
		}
		if !errors.Is(err, test.Err) {
			t.Fatalf("Test %d: got error '%v' - want '%v'", i, err, test.Err)
		}
	}
}

func TestErrorPresenceKind(t *testing.T) {
	if kind := KindOf(ErrPresence); kind != Wrap {
		t.Fatalf("Got kind '%v' - want '%v'", kind, Wrap)
	}
	if errors.Is(ErrPresence, ErrKeyBoundary) {
		t.Fatal("Presence error must not be a key boundary error")
	}
}
