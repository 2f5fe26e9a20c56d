// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/minio/keychain/internal/cli"
	"github.com/minio/keychain/internal/sys"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

const usage = `Usage:
    keychain [options] <command>

Commands:
    server                   Start a keychain server.

    get                      Print the value of a key.
    put                      Add or replace the value of a key.
    rm                       Remove a key.
    clear                    Remove all keys and the wrapped key.

    status                   Print server status information.
    version                  Print the version of the server.

Options:
    -v, --version            Print version information.
    -h, --help               Print command line options.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	subCmds := commands{
		"server":  serverCmd,
		"get":     getCmd,
		"put":     putCmd,
		"rm":      rmCmd,
		"clear":   clearCmd,
		"status":  statusCmd,
		"version": versionCmd,
	}
	if cmd, ok := subCmds[os.Args[1]]; ok {
		cmd(os.Args[1:])
		return
	}

	cmd := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	var showVersion bool
	cmd.BoolVarP(&showVersion, "version", "v", false, "Print version information.")
	if err := cmd.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		cli.Fatalf("%v. See 'keychain --help'", err)
	}
	if showVersion {
		fmt.Println("keychain", sys.BinaryInfo())
		return
	}
	if cmd.NArg() == 0 {
		cmd.Usage()
		os.Exit(2)
	}
	cli.Fatalf("%q is not a keychain command. See 'keychain --help'", cmd.Arg(0))
}

type commands = map[string]func([]string)

func isTerm(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }
