// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/Rizato/eccgame-sub003/client"
	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/ssh/terminal"
)

const (
	showHelpMessage = "Specify -h to show available options"
	listCmdMessage  = "Specify -l to list available commands"
)

// usage displays the general usage when the help flag is not displayed and
// an invalid command was specified.  The commandUsage function is used
// instead when a valid command was specified.
func usage(errorMessage string) {
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	fmt.Fprintln(os.Stderr, errorMessage)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s [OPTIONS] <command> <args...>\n\n",
		appName)
	fmt.Fprintln(os.Stderr, showHelpMessage)
	fmt.Fprintln(os.Stderr, listCmdMessage)
}

// zero clears the passed byte slice.
func zero(b []byte) {
	for i := 0; i < len(b); i++ {
		b[i] = 0x00
	}
}

// readStdinParam reads one parameter that was given as '-' on the command
// line.  When stdin is a terminal the input is read without echoing it so
// private keys stay off the screen and out of the shell history.  Otherwise a
// single line is consumed from the stdin pipe.
func readStdinParam(bio *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if terminal.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Secret: ")
		secret, err := terminal.ReadPassword(fd)
		fmt.Fprint(os.Stderr, "\n")
		if err != nil {
			return "", err
		}
		param := string(secret)
		zero(secret)
		return param, nil
	}

	param, err := bio.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && len(param) == 0 {
		return "", fmt.Errorf("not enough lines provided on stdin")
	}
	return strings.TrimRight(param, "\r\n"), nil
}

// newClient creates a game client from the parsed configuration, loading the
// server TLS certificate when one is in use.
func newClient(cfg *config) (*client.Client, error) {
	var certs []byte
	if !cfg.NoTLS && fileExists(cfg.TLSCert) {
		pem, err := os.ReadFile(cfg.TLSCert)
		if err != nil {
			return nil, fmt.Errorf("error reading TLS certificates: %v",
				err)
		}
		certs = pem
	}

	return client.New(&client.ConnConfig{
		Host:         cfg.Server,
		DisableTLS:   cfg.NoTLS,
		Certificates: certs,
		Proxy:        cfg.Proxy,
		ProxyUser:    cfg.ProxyUser,
		ProxyPass:    cfg.ProxyPass,
	})
}

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		os.Exit(1)
	}

	if len(args) < 1 {
		usage("No command specified")
		os.Exit(1)
	}
	method := args[0]

	// Convert remaining command line args to parameters, reading any
	// argument given as '-' from stdin.  This keeps private keys out of
	// the process argument list where other users could see them.
	bio := bufio.NewReader(os.Stdin)
	params := make([]string, 0, len(args[1:]))
	for _, arg := range args[1:] {
		if arg != "-" {
			params = append(params, arg)
			continue
		}

		param, err := readStdinParam(bio)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read data from "+
				"stdin: %v\n", err)
			os.Exit(1)
		}
		params = append(params, param)
	}

	c, err := newClient(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() {
		c.Shutdown()
		c.WaitForShutdown()
	}()

	ctx := context.Background()
	var result interface{}
	switch method {
	case "daily":
		result, err = c.DailyChallenge(ctx)

	case "challenge":
		if len(params) != 1 {
			usage("Incorrect number of arguments")
			commandUsage(method)
			os.Exit(1)
		}
		result, err = c.Challenge(ctx, params[0])

	case "solutions":
		if len(params) != 1 {
			usage("Incorrect number of arguments")
			commandUsage(method)
			os.Exit(1)
		}
		result, err = c.Solutions(ctx, params[0])

	case "solve":
		if len(params) != 2 {
			usage("Incorrect number of arguments")
			commandUsage(method)
			os.Exit(1)
		}
		privBytes, derr := hex.DecodeString(params[1])
		if derr != nil {
			fmt.Fprintf(os.Stderr, "Invalid private key hex: %v\n",
				derr)
			os.Exit(1)
		}
		priv, _ := btcec.PrivKeyFromBytes(privBytes)
		zero(privBytes)
		pubKeyHex, signatureHex, serr := challenge.SignSolution(priv,
			params[0])
		if serr != nil {
			fmt.Fprintln(os.Stderr, serr)
			os.Exit(1)
		}
		result, err = c.SubmitSolution(ctx, params[0], pubKeyHex,
			signatureHex)

	case "save":
		if len(params) != 2 && len(params) != 3 {
			usage("Incorrect number of arguments")
			commandUsage(method)
			os.Exit(1)
		}
		label := ""
		if len(params) == 3 {
			label = params[2]
		}
		result, err = c.SavePoint(ctx, params[0], params[1], label)

	case "listen":
		// Print the active challenge uuid each time the server rotates
		// to a new one.  Runs until interrupted.
		err = c.NotifyChallenges(func(uuid string) {
			fmt.Println(uuid)
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
		return

	default:
		fmt.Fprintf(os.Stderr, "Unrecognized command '%s'\n", method)
		fmt.Fprintln(os.Stderr, listCmdMessage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Display the result as formatted JSON.
	marshalled, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to format result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(marshalled))
}
