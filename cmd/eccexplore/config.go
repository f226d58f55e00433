// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/Rizato/eccgame-sub003/address"
	flags "github.com/jessevdk/go-flags"
)

var activeNetParams = &address.MainNetParams

// config defines the configuration options for eccexplore.
//
// See loadConfig for details on the configuration load process.
type config struct {
	PubKey   string `short:"k" long:"pubkey" description:"Compressed hex public key to explore from"`
	Scalar   string `long:"scalar" description:"Seed the exploration from the given hex private key instead of a public key"`
	Script   string `short:"x" long:"script" description:"Semicolon separated operations to apply in order (e.g. 'mul 3; sub G; neg')"`
	InFile   string `short:"i" long:"infile" description:"File containing one operation per line, applied before the script"`
	Target   string `short:"t" long:"target" description:"P2PKH address to run the win check against"`
	TestNet3 bool   `long:"testnet" description:"Use testnet address encoding for the win check"`
	Derive   bool   `long:"derive" description:"Print the derived private key when the applied operations determine it"`
	Nodes    bool   `long:"nodes" description:"Print every point discovered during the exploration"`
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// loadConfig initializes and parses the config using command line options.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	if cfg.TestNet3 {
		activeNetParams = &address.TestNet3Params
	}

	// Exactly one starting key is required.
	if (cfg.PubKey == "") == (cfg.Scalar == "") {
		str := "%s: Exactly one of the pubkey and scalar options must " +
			"be given"
		err := fmt.Errorf(str, "loadConfig")
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Ensure the specified operation file exists.
	if cfg.InFile != "" && !fileExists(cfg.InFile) {
		str := "%s: The specified operation file [%v] does not exist"
		err := fmt.Errorf(str, "loadConfig", cfg.InFile)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
