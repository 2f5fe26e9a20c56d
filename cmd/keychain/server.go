// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/api"
	"github.com/minio/keychain/internal/cli"
	"github.com/minio/keychain/internal/https"
	"github.com/minio/keychain/internal/log"
	"github.com/minio/keychain/internal/metric"
	"github.com/minio/keychain/keychainconf"
	flag "github.com/spf13/pflag"
)

const serverCmdUsage = `Usage:
    keychain server [options]

Options:
    --config <PATH>          Path to the server configuration file.
                             Defaults to $KEYCHAIN_CONFIG or
                             ~/.keychain/config.yml
    --addr <IP:PORT>         The address of the server. It takes
                             precedence over the config file.
    --mlock                  Lock all allocated memory pages to prevent
                             the OS from swapping them to disk.
    --color <when>           Specify when to use colored output. The automatic
                             mode only enables colors if an interactive terminal
                             is detected - colors are automatically disabled if
                             the output goes to a pipe.
                             Possible values: *auto*, never, always.
    -q, --quiet              Do not print information on startup.

    -h, --help               Print command line options.

Starts a keychain server. The server encrypts all values with a
symmetric key that is wrapped by the configured key provider.

If the soft provider passphrase is set to '-', the server reads
the passphrase from the terminal.

Examples:
    $ keychain server --config ./config.yml
`

func serverCmd(args []string) {
	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, serverCmdUsage) }

	var (
		configFile  string
		addr        string
		mlock       bool
		quiet       bool
		colorOutput colorOption
	)
	cmd.StringVar(&configFile, "config", "", "Path to the server configuration file")
	cmd.StringVar(&addr, "addr", "", "The address of the server")
	cmd.BoolVar(&mlock, "mlock", false, "Lock all allocated memory pages")
	cmd.Var(&colorOutput, "color", "Specify when to use colored output")
	cmd.BoolVarP(&quiet, "quiet", "q", false, "Do not print information on startup")
	if err := cmd.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		cli.Fatalf("%v. See 'keychain server --help'", err)
	}
	if cmd.NArg() > 0 {
		cli.Fatal("too many arguments. See 'keychain server --help'")
	}

	if mlock {
		if err := mlockall(); err != nil {
			cli.Fatalf("failed to lock memory pages: %v", err)
		}
	}

	filename, err := cli.ConfigPath(configFile)
	if err != nil {
		cli.Fatal(err)
	}
	config, err := keychainconf.ReadFile(filename)
	if err != nil {
		cli.Fatalf("failed to read config file '%s': %v", filename, err)
	}
	if addr != "" {
		config.Addr = addr
	}
	if soft, ok := config.Provider.(*keychainconf.SoftProvider); ok && soft.Passphrase == "-" {
		passphrase, err := cli.ReadPassword("Enter passphrase: ")
		if err != nil {
			cli.Fatal(err)
		}
		soft.Passphrase = string(passphrase)
	}
	tlsConfig, err := config.TLSConfig()
	if err != nil {
		cli.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics := metric.New()
	handler := log.NewHandler(
		log.NewFormattedHandler(os.Stderr, config.Log.Format, &slog.HandlerOptions{Level: config.Log.Level}),
		config.Log.Level,
	)
	handler.Add(metrics.ErrorEventCounter())
	logger := slog.New(handler)

	store, err := config.Open(ctx, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open store", "err", err)
	} else {
		defer store.Close()
	}

	srv := https.NewServer(&https.Config{
		Addr: config.Addr,
		Handler: api.NewRouter(&api.RouterConfig{
			Store:    store,
			Metrics:  metrics,
			Verify:   api.BearerToken(config.API.Token),
			ErrorLog: logger,
		}),
		TLSConfig: tlsConfig,
		ErrorLog:  logger,
	})

	if !quiet {
		cli.PrintStartupMessage(&cli.Startup{
			Addr:     srv.Addr(),
			TLS:      tlsConfig != nil,
			Store:    storeName(config.Store, store),
			Provider: providerName(config.Provider),
			Token:    config.API.Token != "",
			Color:    colorOutput.Colorize(),
		})
	}
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(err)
	}
}

// storeName returns a description of the configured store
// or the empty string if the store is not available.
func storeName(config keychainconf.KVStore, store *keychain.Store) string {
	if store == nil {
		return ""
	}
	switch s := config.(type) {
	case *keychainconf.MemStore:
		return "In-Memory"
	case *keychainconf.FSStore:
		return "Filesystem: " + s.Path
	case *keychainconf.FileStore:
		return "File: " + s.Path
	default:
		return fmt.Sprintf("%T", config)
	}
}

func providerName(config keychainconf.KeyProvider) string {
	switch p := config.(type) {
	case *keychainconf.SoftProvider:
		return "Software (no hardware protection)"
	case *keychainconf.KeyringProvider:
		return "OS Keyring"
	case *keychainconf.AWSProvider:
		return "AWS KMS: " + p.Endpoint
	case *keychainconf.VaultProvider:
		return "Hashicorp Vault: " + p.Endpoint
	default:
		return fmt.Sprintf("%T", config)
	}
}
