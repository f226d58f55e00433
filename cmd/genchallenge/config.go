// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rizato/eccgame-sub003/address"
	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDbType = "leveldb"
	defaultCount  = 1
)

var (
	eccgamedHomeDir = btcutil.AppDataDir("eccgamed", false)
	defaultDataDir  = filepath.Join(eccgamedHomeDir, "data")
	knownDbTypes    = []string{"leveldb", "pebble"}
	activeNetParams = &address.MainNetParams
)

// config defines the configuration options for genchallenge.
//
// See loadConfig for details on the configuration load process.
type config struct {
	DataDir  string   `short:"b" long:"datadir" description:"Location of the eccgamed data directory"`
	DbType   string   `long:"dbtype" description:"Database backend to use for challenge storage"`
	TestNet3 bool     `long:"testnet" description:"Use the test network"`
	Count    int      `short:"n" long:"count" description:"Number of random challenges to generate"`
	Scalar   string   `long:"scalar" description:"Generate a single challenge from the given hex private key instead of random ones"`
	Explorer string   `long:"explorer" description:"Explorer link stored with the generated challenges"`
	Metadata []string `long:"metadata" description:"Metadata line stored with the generated challenges; may be given multiple times"`
}

// validDbType returns whether or not dbType is a supported database type.
func validDbType(dbType string) bool {
	for _, knownType := range knownDbTypes {
		if dbType == knownType {
			return true
		}
	}

	return false
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
	cfg := config{
		DataDir: defaultDataDir,
		DbType:  defaultDbType,
		Count:   defaultCount,
	}

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

	// Validate database type.
	if !validDbType(cfg.DbType) {
		str := "%s: The specified database type [%v] is invalid -- " +
			"supported types %v"
		err := fmt.Errorf(str, "loadConfig", cfg.DbType, knownDbTypes)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	if cfg.Count < 1 {
		str := "%s: The challenge count must be at least 1"
		err := fmt.Errorf(str, "loadConfig")
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Append the network name to the data directory so the tool writes to
	// the same database the daemon serves for the selected network.
	cfg.DataDir = filepath.Join(cfg.DataDir, activeNetParams.Name)

	return &cfg, remainingArgs, nil
}
