// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/Rizato/eccgame-sub003/database/engine"
	"github.com/Rizato/eccgame-sub003/database/engine/leveldb"
	"github.com/Rizato/eccgame-sub003/database/engine/pebbledb"
	"github.com/Rizato/eccgame-sub003/limits"
	"github.com/btcsuite/btclog"
)

var (
	cfg *config
	log btclog.Logger
)

// loadChallengeDB opens the challenge database, creating it when it does not
// yet exist.
func loadChallengeDB() (engine.Engine, error) {
	dbPath := filepath.Join(cfg.DataDir, "challenges_"+cfg.DbType)
	create := !fileExists(dbPath)
	if create {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, err
		}
	}

	log.Infof("Loading challenge database from '%s'", dbPath)
	var db engine.Engine
	var err error
	switch cfg.DbType {
	case "pebble":
		db, err = pebbledb.NewDB(dbPath, create, 0, 0)
	default:
		db, err = leveldb.NewDB(dbPath, create)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Challenge database loaded")
	return db, nil
}

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Load configuration and parse command line.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg

	// Setup logging.
	backendLogger := btclog.NewBackend(os.Stdout)
	defer os.Stdout.Sync()
	log = backendLogger.Logger("MAIN")
	challenge.UseLogger(backendLogger.Logger("CHAL"))

	// Load the challenge database.
	db, err := loadChallengeDB()
	if err != nil {
		log.Errorf("Failed to load database: %v", err)
		return err
	}
	store := challenge.NewStore(db)
	defer store.Close()

	// Generate a single challenge from an explicit scalar when one was
	// given.  These are practice challenges whose solution the operator
	// chooses, so the scalar is never stored or logged.
	if cfg.Scalar != "" {
		k, ok := new(big.Int).SetString(cfg.Scalar, 16)
		if !ok {
			err := errors.New("the scalar must be a hex integer")
			log.Errorf("%v", err)
			return err
		}
		ch, err := challenge.GenerateFromScalar(k, cfg.Explorer,
			cfg.Metadata, activeNetParams)
		k.SetInt64(0)
		if err != nil {
			log.Errorf("Failed to generate challenge: %v", err)
			return err
		}
		if err := store.AddChallenge(ch); err != nil {
			log.Errorf("Failed to store challenge: %v", err)
			return err
		}

		log.Infof("Generated challenge %s paying to %s", ch.UUID,
			ch.P2PKHAddress)
		return nil
	}

	// Otherwise generate the requested number of random challenges.  The
	// private keys are discarded inside Generate, so nobody knows the
	// solutions, including us.
	for i := 0; i < cfg.Count; i++ {
		ch, err := challenge.Generate(cfg.Explorer, cfg.Metadata,
			activeNetParams)
		if err != nil {
			log.Errorf("Failed to generate challenge: %v", err)
			return err
		}
		if err := store.AddChallenge(ch); err != nil {
			log.Errorf("Failed to store challenge: %v", err)
			return err
		}

		log.Infof("Generated challenge %s paying to %s", ch.UUID,
			ch.P2PKHAddress)
	}

	log.Infof("Generated a total of %d challenges", cfg.Count)
	return nil
}

func main() {
	// Use all processor cores and up some limits.
	runtime.GOMAXPROCS(runtime.NumCPU())
	if err := limits.SetLimits(); err != nil {
		os.Exit(1)
	}

	// Work around defer not working after os.Exit()
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
