// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"
	"unicode/utf8"

	"aead.dev/mem"
	"github.com/fatih/color"
	"github.com/minio/keychain"
	"github.com/minio/keychain/internal/cli"
	flag "github.com/spf13/pflag"
)

const getCmdUsage = `Usage:
    keychain get [options] <key>

Options:
    -s, --server <HOST:PORT> Use the server HOST:PORT. Defaults to $KEYCHAIN_SERVER.
    -a, --api-token <TOKEN>  API token. Defaults to $KEYCHAIN_API_TOKEN.
    -k, --insecure           Skip TLS certificate validation.
        --json               Print the value in JSON format.

    -h, --help               Print command line options.

Prints the value of the key. It exits with status 1 if the key
does not exist.

Examples:
    $ keychain get my-token
`

func getCmd(args []string) {
	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, getCmdUsage) }

	var (
		server             string
		token              string
		insecureSkipVerify bool
		jsonOutput         bool
	)
	flagsServer(cmd, &server)
	flagsAPIToken(cmd, &token)
	flagsInsecureSkipVerify(cmd, &insecureSkipVerify)
	flagsOutputJSON(cmd, &jsonOutput)
	parseCmd(cmd, args, "get")

	switch {
	case cmd.NArg() == 0:
		cli.Fatal("no key specified. See 'keychain get --help'")
	case cmd.NArg() > 1:
		cli.Fatal("too many arguments. See 'keychain get --help'")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	key := cmd.Arg(0)
	client := newClient(server, token, insecureSkipVerify)
	value, ok, err := client.Get(ctx, key)
	if err != nil {
		exitOnCancel(err)
		cli.Fatalf("failed to get %q: %v", key, err)
	}
	if !ok {
		cli.Fatalf("key %q does not exist", key)
	}

	if jsonOutput {
		type Response struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		json.NewEncoder(os.Stdout).Encode(Response{Key: key, Value: value})
		return
	}
	fmt.Println(value)
}

const putCmdUsage = `Usage:
    keychain put [options] <key> [<value> | -]

Options:
    -s, --server <HOST:PORT> Use the server HOST:PORT. Defaults to $KEYCHAIN_SERVER.
    -a, --api-token <TOKEN>  API token. Defaults to $KEYCHAIN_API_TOKEN.
    -k, --insecure           Skip TLS certificate validation.

    -h, --help               Print command line options.

Adds or replaces the value of the key. If the value is '-', it is
read from standard input. If no value is given, it is read from
the terminal without echo.

Examples:
    $ keychain put my-token "eyJhbGciOiJIUzI1NiJ9"
    $ cat token.txt | keychain put my-token -
`

func putCmd(args []string) {
	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, putCmdUsage) }

	var (
		server             string
		token              string
		insecureSkipVerify bool
	)
	flagsServer(cmd, &server)
	flagsAPIToken(cmd, &token)
	flagsInsecureSkipVerify(cmd, &insecureSkipVerify)
	parseCmd(cmd, args, "put")

	switch {
	case cmd.NArg() == 0:
		cli.Fatal("no key specified. See 'keychain put --help'")
	case cmd.NArg() > 2:
		cli.Fatal("too many arguments. See 'keychain put --help'")
	}

	var value string
	switch {
	case cmd.NArg() == 2 && cmd.Arg(1) == "-":
		v, err := readValue(os.Stdin)
		if err != nil {
			cli.Fatalf("failed to read value from standard input: %v", err)
		}
		value = v
	case cmd.NArg() == 2:
		value = cmd.Arg(1)
	default:
		v, err := cli.ReadPassword("Enter value: ")
		if err != nil {
			cli.Fatal(err)
		}
		value = string(v)
	}
	if !utf8.ValidString(value) {
		cli.Fatal("value is not a valid UTF-8 string")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	key := cmd.Arg(0)
	client := newClient(server, token, insecureSkipVerify)
	if err := client.Put(ctx, key, value); err != nil {
		exitOnCancel(err)
		cli.Fatalf("failed to put %q: %v", key, err)
	}
}

const rmCmdUsage = `Usage:
    keychain rm [options] <key>...

Options:
    -s, --server <HOST:PORT> Use the server HOST:PORT. Defaults to $KEYCHAIN_SERVER.
    -a, --api-token <TOKEN>  API token. Defaults to $KEYCHAIN_API_TOKEN.
    -k, --insecure           Skip TLS certificate validation.

    -h, --help               Print command line options.

Removes one or more keys. Removing a key that does not exist
is not an error.

Examples:
    $ keychain rm my-token my-other-token
`

func rmCmd(args []string) {
	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, rmCmdUsage) }

	var (
		server             string
		token              string
		insecureSkipVerify bool
	)
	flagsServer(cmd, &server)
	flagsAPIToken(cmd, &token)
	flagsInsecureSkipVerify(cmd, &insecureSkipVerify)
	parseCmd(cmd, args, "rm")

	if cmd.NArg() == 0 {
		cli.Fatal("no key specified. See 'keychain rm --help'")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	client := newClient(server, token, insecureSkipVerify)
	for _, key := range cmd.Args() {
		if err := client.Remove(ctx, key); err != nil {
			exitOnCancel(err)
			cli.Fatalf("failed to remove %q: %v", key, err)
		}
	}
}

const clearCmdUsage = `Usage:
    keychain clear [options]

Options:
    -s, --server <HOST:PORT> Use the server HOST:PORT. Defaults to $KEYCHAIN_SERVER.
    -a, --api-token <TOKEN>  API token. Defaults to $KEYCHAIN_API_TOKEN.
    -k, --insecure           Skip TLS certificate validation.
    -f, --force              Do not ask for confirmation.

    -h, --help               Print command line options.

Removes all keys and the wrapped symmetric key. Values written
before the clear can no longer be decrypted.
`

func clearCmd(args []string) {
	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, clearCmdUsage) }

	var (
		server             string
		token              string
		insecureSkipVerify bool
		force              bool
	)
	flagsServer(cmd, &server)
	flagsAPIToken(cmd, &token)
	flagsInsecureSkipVerify(cmd, &insecureSkipVerify)
	cmd.BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")
	parseCmd(cmd, args, "clear")

	if cmd.NArg() > 0 {
		cli.Fatal("too many arguments. See 'keychain clear --help'")
	}
	if !force {
		if !isTerm(os.Stdin) {
			cli.Fatal("refusing to clear without confirmation. Use '--force'")
		}
		fmt.Fprint(os.Stderr, "Remove all keys? [y/N]: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	client := newClient(server, token, insecureSkipVerify)
	if err := client.Clear(ctx); err != nil {
		exitOnCancel(err)
		cli.Fatalf("failed to clear store: %v", err)
	}
}

const statusCmdUsage = `Usage:
    keychain status [options]

Options:
    -s, --server <HOST:PORT> Use the server HOST:PORT. Defaults to $KEYCHAIN_SERVER.
    -a, --api-token <TOKEN>  API token. Defaults to $KEYCHAIN_API_TOKEN.
    -k, --insecure           Skip TLS certificate validation.
        --json               Print status in JSON format.

    -h, --help               Print command line options.
`

func statusCmd(args []string) {
	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, statusCmdUsage) }

	var (
		server             string
		token              string
		insecureSkipVerify bool
		jsonOutput         bool
	)
	flagsServer(cmd, &server)
	flagsAPIToken(cmd, &token)
	flagsInsecureSkipVerify(cmd, &insecureSkipVerify)
	flagsOutputJSON(cmd, &jsonOutput)
	parseCmd(cmd, args, "status")

	if cmd.NArg() > 0 {
		cli.Fatal("too many arguments. See 'keychain status --help'")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	client := newClient(server, token, insecureSkipVerify)
	start := time.Now()
	status, err := client.Status(ctx)
	if err != nil {
		exitOnCancel(err)
		cli.Fatal(err)
	}
	latency := time.Since(start)

	if jsonOutput || !isTerm(os.Stdout) {
		json.NewEncoder(os.Stdout).Encode(status)
		return
	}

	boldBlue := color.New(color.Bold, color.FgBlue)
	fmt.Println(color.GreenString("●  ") + boldBlue.Sprint(strings.TrimPrefix(strings.TrimPrefix(client.Endpoint, "https://"), "http://")))
	switch {
	case status.UpTime > 24*time.Hour:
		fmt.Printf("   UpTime:   %.f days %.f hours\n", status.UpTime.Hours()/24, math.Mod(status.UpTime.Hours(), 24))
	case status.UpTime > 1*time.Hour:
		fmt.Printf("   UpTime:   %.f hours\n", status.UpTime.Hours())
	case status.UpTime > 1*time.Minute:
		fmt.Printf("   UpTime:   %.f minutes\n", status.UpTime.Minutes())
	default:
		fmt.Printf("   UpTime:   %.f seconds\n", status.UpTime.Seconds())
	}
	fmt.Println("   Latency: ", latency.Round(time.Millisecond))
	fmt.Println("   Version: ", status.Version)
	switch {
	case !status.StoreAvailable:
		fmt.Println("   Store:   ", color.RedString("unavailable"))
	case status.StoreUnreachable:
		fmt.Println("   Store:   ", color.RedString("unreachable"))
	default:
		fmt.Println("   Store:   ", status.StoreLatency.Round(time.Microsecond))
	}
	if status.Provider != "" {
		fmt.Println("   Provider:", status.Provider)
	}
}

const versionCmdUsage = `Usage:
    keychain version [options]

Options:
    -s, --server <HOST:PORT> Use the server HOST:PORT. Defaults to $KEYCHAIN_SERVER.
    -k, --insecure           Skip TLS certificate validation.

    -h, --help               Print command line options.
`

func versionCmd(args []string) {
	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.Usage = func() { fmt.Fprint(os.Stderr, versionCmdUsage) }

	var (
		server             string
		insecureSkipVerify bool
	)
	flagsServer(cmd, &server)
	flagsInsecureSkipVerify(cmd, &insecureSkipVerify)
	parseCmd(cmd, args, "version")

	if cmd.NArg() > 0 {
		cli.Fatal("too many arguments. See 'keychain version --help'")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	client := newClient(server, "", insecureSkipVerify)
	version, err := client.Version(ctx)
	if err != nil {
		exitOnCancel(err)
		cli.Fatal(err)
	}
	fmt.Println(version)
}

func parseCmd(cmd *flag.FlagSet, args []string, name string) {
	if err := cmd.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		cli.Fatalf("%v. See 'keychain %s --help'", err, name)
	}
}

func newClient(server, token string, insecureSkipVerify bool) *keychain.Client {
	var (
		endpoint string
		err      error
	)
	if server != "" {
		endpoint, err = cli.ParseEndpoint(server)
	} else {
		endpoint, err = cli.EndpointFromEnv()
	}
	if err != nil {
		cli.Fatal(err)
	}

	tlsConfig, err := cli.TLSConfigFromEnv(insecureSkipVerify)
	if err != nil {
		cli.Fatal(err)
	}
	if insecureSkipVerify && strings.HasPrefix(endpoint, "https://") {
		cli.Warnf("skipping verification of the server certificate")
	}

	client := keychain.NewClient(endpoint, tlsConfig)
	client.APIToken = token
	return client
}

// readValue reads a value of at most 1 MiB from r. A
// single trailing newline is removed.
func readValue(r io.Reader) (string, error) {
	const MaxSize = 1 * mem.MiB

	b, err := io.ReadAll(mem.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(b)) > int64(MaxSize) {
		return "", errors.New("value exceeds 1 MiB")
	}
	value := string(b)
	if v, ok := strings.CutSuffix(value, "\n"); ok {
		value = strings.TrimSuffix(v, "\r")
	}
	return value, nil
}

func exitOnCancel(err error) {
	if errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
