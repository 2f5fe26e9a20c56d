// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

var parseFormatTests = []struct {
	Value      string
	Format     Format
	ShouldFail bool
}{
	{Value: "", Format: TextFormat},        // 0
	{Value: "text", Format: TextFormat},    // 1
	{Value: "JSON", Format: JSONFormat},    // 2
	{Value: " json ", Format: JSONFormat},  // 3
	{Value: "yaml", ShouldFail: true},      // 4
	{Value: "text json", ShouldFail: true}, // 5
}

func TestParseFormat(t *testing.T) {
	for i, test := range parseFormatTests {
		format, err := ParseFormat(test.Value)
		if err == nil && test.ShouldFail {
			t.Fatalf("Test %d: should have failed but succeeded", i)
		}
		if err != nil && !test.ShouldFail {
			t.Fatalf("Test %d: failed to parse format: %v", i, err)
		}
		if err == nil && format != test.Format {
			t.Fatalf("Test %d: got '%s' - want '%s'", i, format, test.Format)
		}
	}
}

var parseLevelTests = []struct {
	Value      string
	Level      slog.Level
	ShouldFail bool
}{
	{Value: "", Level: slog.LevelInfo},       // 0
	{Value: "DEBUG", Level: slog.LevelDebug}, // 1
	{Value: "warn", Level: slog.LevelWarn},   // 2
	{Value: "ERROR", Level: slog.LevelError}, // 3
	{Value: "verbose", ShouldFail: true},     // 4
}

func TestParseLevel(t *testing.T) {
	for i, test := range parseLevelTests {
		level, err := ParseLevel(test.Value)
		if err == nil && test.ShouldFail {
			t.Fatalf("Test %d: should have failed but succeeded", i)
		}
		if err != nil && !test.ShouldFail {
			t.Fatalf("Test %d: failed to parse level: %v", i, err)
		}
		if err == nil && level != test.Level {
			t.Fatalf("Test %d: got '%v' - want '%v'", i, level, test.Level)
		}
	}
}

func TestHandler(t *testing.T) {
	var stderr, events bytes.Buffer
	h := NewHandler(NewFormattedHandler(&stderr, JSONFormat, nil), slog.LevelError)
	h.Add(&events)

	log := slog.New(h)
	log.Info("ignored")
	if stderr.Len() != 0 || events.Len() != 0 {
		t.Fatalf("Info record should not be handled: stderr '%s', events '%s'", stderr.String(), events.String())
	}

	log.Warn("key pair created in software")
	if stderr.Len() != 0 {
		t.Fatalf("Warn record should not be passed to handler: '%s'", stderr.String())
	}
	if !strings.Contains(events.String(), "key pair created in software") {
		t.Fatalf("Warn record should be written to additional output: '%s'", events.String())
	}

	log.With("key", "password").Error("failed to unwrap key")
	if !strings.Contains(stderr.String(), `"msg":"failed to unwrap key"`) {
		t.Fatalf("Error record should be passed to handler: '%s'", stderr.String())
	}
	if !strings.Contains(stderr.String(), `"key":"password"`) {
		t.Fatalf("Error record should contain attributes: '%s'", stderr.String())
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("Handler should be enabled for warn records")
	}
}
