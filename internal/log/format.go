// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format defines a type of different log output formats,
// used by error events if no custom log handler specified.
type Format string

const (
	// TextFormat creates plain text formatted log message
	TextFormat Format = "Text"

	// JSONFormat creates JSON formatted log messages
	JSONFormat Format = "JSON"
)

// ParseFormat parses s as log format. It accepts
// "text" and "json" ignoring case. An empty s is
// parsed as TextFormat.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return TextFormat, nil
	case "json":
		return JSONFormat, nil
	default:
		return "", fmt.Errorf("log: invalid log format '%s'", s)
	}
}

// ParseLevel parses s as slog level, like "INFO"
// or "debug". An empty s is parsed as slog.LevelInfo.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s = strings.TrimSpace(s); s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log: invalid log level '%s'", s)
	}
	return level, nil
}

// NewFormattedHandler returns a new text or JSON
// formatted log handler writing to w.
func NewFormattedHandler(w io.Writer, f Format, opts *slog.HandlerOptions) slog.Handler {
	switch f {
	case JSONFormat:
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}
