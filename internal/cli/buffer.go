// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	tui "github.com/charmbracelet/lipgloss"
)

// A Buffer is used to efficiently build a string
// to display on a terminal.
type Buffer struct {
	s strings.Builder
}

// Sprintf appends to the Buffer.
// Arguments are handled in the manner
// of fmt.Printf.
func (b *Buffer) Sprintf(format string, v ...any) *Buffer {
	b.s.WriteString(fmt.Sprintf(format, v...))
	return b
}

// Sprintln appends to the Buffer.
// Arguments are handled in the manner
// of fmt.Println.
func (b *Buffer) Sprintln(v ...any) *Buffer {
	b.s.WriteString(fmt.Sprintln(v...))
	return b
}

// Stylef appends the styled string to the Buffer.
// Arguments are handled in the manner of fmt.Printf
// before styling.
func (b *Buffer) Stylef(style tui.Style, format string, v ...any) *Buffer {
	b.s.WriteString(style.Render(fmt.Sprintf(format, v...)))
	return b
}

// Styleln appends the styled string to the Buffer.
// Arguments are handled in the manner of fmt.Println
// before styling.
func (b *Buffer) Styleln(style tui.Style, v ...any) *Buffer {
	b.s.WriteString(style.Render(fmt.Sprint(v...)))
	b.s.WriteByte('\n')
	return b
}

// String returns the accumulated string.
func (b *Buffer) String() string { return b.s.String() }
