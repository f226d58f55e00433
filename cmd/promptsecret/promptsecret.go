// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// promptsecret prompts for a secret without echoing it and writes it to
// stdout.  It exists so private keys can be piped into other tools without
// showing up in the shell history or process list, for example:
//
//	promptsecret | eccctl solve <uuid> -
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

func zero(b []byte) {
	for i := 0; i < len(b); i++ {
		b[i] = 0x00
	}
}

func main() {
	fmt.Fprint(os.Stderr, "Secret: ")

	secret, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprint(os.Stderr, "\n")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to read secret: %v\n", err)
		os.Exit(1)
	}

	_, err = os.Stdout.Write(secret)
	zero(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to write to stdout: %v\n", err)
		os.Exit(1)
	}
}
