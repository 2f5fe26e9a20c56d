// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package log

import (
	"context"
	"io"
	"log/slog"
)

// Handler is an slog.Handler that handles server log records.
//
// Log records may be handled twice. First, they are passed to
// the wrapped handler. For example to write to standard error.
// Second, they are written as text to all additional outputs,
// if any. For example to count error events.
type Handler struct {
	h     slog.Handler
	level slog.Leveler

	text slog.Handler
	out  *multiWriter
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a new Handler passing records with a
// level >= level to h.
func NewHandler(h slog.Handler, level slog.Leveler) *Handler {
	handler := &Handler{
		h:     h,
		level: level,
		out:   &multiWriter{},
	}
	handler.text = slog.NewTextHandler(handler.out, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	return handler
}

// Add adds w as additional output. It receives all
// records with level slog.LevelWarn or higher.
func (h *Handler) Add(w ...io.Writer) { h.out.Add(w...) }

// Enabled reports whether h handles records at the given level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.h.Enabled(ctx, level) ||
		(h.text.Enabled(ctx, level) && h.out.Len() > 0)
}

// Handle handles r by passing it first to the wrapped handler
// and then writing it to all additional outputs.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if r.Level >= h.level.Level() {
		err = h.h.Handle(ctx, r)
	}
	if h.out.Len() > 0 && h.text.Enabled(ctx, r.Level) {
		if tErr := h.text.Handle(ctx, r); err == nil {
			err = tErr
		}
	}
	return err
}

// WithAttrs returns a new Handler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		h:     h.h.WithAttrs(attrs),
		level: h.level,
		text:  h.text.WithAttrs(attrs),
		out:   h.out,
	}
}

// WithGroup returns a new Handler with the given group appended to
// the receiver's existing groups.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		h:     h.h.WithGroup(name),
		level: h.level,
		text:  h.text.WithGroup(name),
		out:   h.out,
	}
}
