// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"runtime"
	"strings"

	tui "github.com/charmbracelet/lipgloss"
	"github.com/minio/keychain/internal/sys"
)

// Startup describes a running keychain server.
type Startup struct {
	Addr     string // The server listen address
	TLS      bool   // Whether the server accepts HTTPS
	Store    string // The key-value store or empty if unavailable
	Provider string // The key provider name
	Token    bool   // Whether requests must carry an API token
	Color    bool   // Whether to colorize the output
}

// StartupMessage returns the message printed by a
// keychain server once it accepts requests.
func StartupMessage(s *Startup) string {
	var faint, item, warn tui.Style
	if s.Color {
		faint = faint.Faint(true)
		item = item.Foreground(tui.Color("#2e42d1")).Bold(true)
		warn = warn.Foreground(tui.Color("#ac0000"))
	}

	scheme := "http://"
	if s.TLS {
		scheme = "https://"
	}
	endpoint := scheme + s.Addr
	if strings.HasPrefix(s.Addr, ":") {
		endpoint = scheme + "127.0.0.1" + s.Addr
	}

	buffer := new(Buffer)
	buffer.Stylef(item, "%-12s", "Copyright").Sprintf("%-22s", "MinIO, Inc.").Styleln(faint, "https://min.io")
	buffer.Stylef(item, "%-12s", "License").Sprintf("%-22s", "GNU AGPLv3").Styleln(faint, "https://www.gnu.org/licenses/agpl-3.0.html")
	buffer.Stylef(item, "%-12s", "Version").Sprintf("%-22s", sys.BinaryInfo().Version).Stylef(faint, "%s/%s\n", runtime.GOOS, runtime.GOARCH)
	buffer.Sprintln()

	buffer.Stylef(item, "%-12s", "Endpoint").Sprintln(endpoint)
	if s.Store != "" {
		buffer.Stylef(item, "%-12s", "Store").Sprintln(s.Store)
	} else {
		buffer.Stylef(item, "%-12s", "Store").Styleln(warn, "[ unavailable ]")
	}
	buffer.Stylef(item, "%-12s", "Provider").Sprintln(s.Provider)
	if !s.Token {
		buffer.Stylef(item, "%-12s", "API Token").Styleln(faint, "[ disabled ]")
	}
	buffer.Sprintln()

	buffer.Stylef(item, "%-12s", "CLI Access").Sprintf("$ export %s=%s", EnvServer, endpoint).Sprintln()
	if s.Token {
		buffer.Sprintf("%-12s$ export %s=<token>", " ", EnvAPIToken).Sprintln()
	}
	buffer.Sprintf("%-12s$ keychain --help", " ")
	return buffer.String()
}

// PrintStartupMessage prints the StartupMessage to stdout.
func PrintStartupMessage(s *Startup) { fmt.Println(StartupMessage(s)) }
