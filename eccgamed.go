// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/Rizato/eccgame-sub003/database/engine"
	"github.com/Rizato/eccgame-sub003/database/engine/leveldb"
	"github.com/Rizato/eccgame-sub003/database/engine/pebbledb"
	"github.com/Rizato/eccgame-sub003/internal/version"
	"github.com/Rizato/eccgame-sub003/limits"
	"github.com/Rizato/eccgame-sub003/ossec"
	"github.com/Rizato/eccgame-sub003/server"
	"github.com/btcsuite/btcd/btcutil"
)

// cfg is the loaded daemon configuration.  It is set early in eccgamedMain
// and treated as read-only afterwards.
var cfg *config

// winServiceMain is only invoked on Windows.  It detects when eccgamed is
// running as a service and reacts accordingly.
var winServiceMain func() (bool, error)

// eccgamedMain is the real main function for eccgamed.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.  The optional serverChan parameter is mainly used by the service
// code to be notified with the server once it is setup so it can gracefully
// stop it when requested from the service control manager.
func eccgamedMain(serverChan chan<- *server.Server) error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the service control manager.
	interrupt := interruptListener()
	defer eccgLog.Info("Shutdown complete")

	// Show version at startup.
	eccgLog.Infof("Version %s", version.String())

	// On OpenBSD drop the process rights to the directories and network
	// access it actually needs before anything is opened.
	if err := restrictProcess(); err != nil {
		eccgLog.Errorf("Unable to restrict the process: %v", err)
		return err
	}

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		go func() {
			listenAddr := net.JoinHostPort("", cfg.Profile)
			eccgLog.Infof("Profile server listening on %s", listenAddr)
			profileRedirect := http.RedirectHandler("/debug/pprof",
				http.StatusSeeOther)
			http.Handle("/", profileRedirect)
			eccgLog.Errorf("%v", http.ListenAndServe(listenAddr, nil))
		}()
	}

	// Write cpu profile if requested.
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			eccgLog.Errorf("Unable to create cpu profile: %v", err)
			return err
		}
		pprof.StartCPUProfile(f)
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	// Write mem profile if requested.
	if cfg.MemProfile != "" {
		f, err := os.Create(cfg.MemProfile)
		if err != nil {
			eccgLog.Errorf("Unable to create mem profile: %v", err)
			return err
		}
		timer := time.NewTimer(time.Minute * 20) // 20 minutes
		go func() {
			<-timer.C
			pprof.WriteHeapProfile(f)
			f.Close()
		}()
	}

	// Load the challenge database.
	db, err := loadChallengeDB()
	if err != nil {
		eccgLog.Errorf("%v", err)
		return err
	}
	store := challenge.NewStore(db)
	defer func() {
		// Ensure the database is sync'd and closed on shutdown.
		eccgLog.Infof("Gracefully shutting down the challenge store...")
		store.Close()
	}()

	// Return now if an interrupt signal was triggered during setup.
	if interruptRequested(interrupt) {
		return nil
	}

	// Create the API server and start it.
	listeners, err := setupListeners()
	if err != nil {
		eccgLog.Errorf("Unable to set up listeners: %v", err)
		return err
	}
	s, err := server.New(&server.Config{
		Listeners:     listeners,
		Store:         store,
		MaxWebsockets: cfg.MaxWebsockets,
	})
	if err != nil {
		eccgLog.Errorf("Unable to create server on %v: %v",
			cfg.Listeners, err)
		return err
	}
	defer func() {
		eccgLog.Infof("Gracefully shutting down the server...")
		s.Stop()
		s.WaitForShutdown()
	}()
	s.Start()
	if serverChan != nil {
		serverChan <- s
	}

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems such as the
	// service control manager.
	<-interrupt
	return nil
}

// restrictProcess confines the daemon on OpenBSD to the directories it uses
// plus inet access.  It is a no-op on every other platform.
func restrictProcess() error {
	if runtime.GOOS != "openbsd" {
		return nil
	}

	for _, path := range []string{cfg.HomeDir, cfg.DataDir, cfg.LogDir} {
		if err := ossec.Unveil(path, "rwc"); err != nil {
			return err
		}
	}
	return ossec.PledgePromises("stdio rpath wpath cpath flock dns inet")
}

// challengeDbPath returns the database path derived from the database type.
func challengeDbPath(dbType string) string {
	return filepath.Join(cfg.DataDir, "challenges_"+dbType)
}

// loadChallengeDB loads (and creates when needed) the challenge database,
// taking into account the selected database backend.
func loadChallengeDB() (engine.Engine, error) {
	dbPath := challengeDbPath(cfg.DbType)
	create := !fileExists(dbPath)
	if create {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, err
		}
	}

	eccgLog.Infof("Loading challenge database from '%s'", dbPath)
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

	eccgLog.Info("Challenge database loaded")
	return db, nil
}

// genCertPair generates a key/cert pair to the paths provided.
func genCertPair(certFile, keyFile string) error {
	eccgLog.Infof("Generating TLS certificates...")

	org := "eccgamed autogenerated cert"
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	cert, key, err := btcutil.NewTLSCertPair(org, validUntil, nil)
	if err != nil {
		return err
	}

	// Write cert and key files.
	if err = os.WriteFile(certFile, cert, 0666); err != nil {
		return err
	}
	if err = os.WriteFile(keyFile, key, 0600); err != nil {
		os.Remove(certFile)
		return err
	}

	eccgLog.Infof("Done generating TLS certificates")
	return nil
}

// setupListeners returns a slice of listeners that are configured for use
// with the API server depending on the configuration settings for listen
// addresses and TLS.
func setupListeners() ([]net.Listener, error) {
	// Setup TLS if not disabled.
	listenFunc := net.Listen
	if !cfg.DisableTLS {
		// Generate the TLS cert and key file if both don't already
		// exist.
		if !fileExists(cfg.TLSKey) && !fileExists(cfg.TLSCert) {
			err := genCertPair(cfg.TLSCert, cfg.TLSKey)
			if err != nil {
				return nil, err
			}
		}
		keypair, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return nil, err
		}

		tlsConfig := tls.Config{
			Certificates: []tls.Certificate{keypair},
			MinVersion:   tls.VersionTLS12,
		}

		// Change the standard net.Listen function to the tls one.
		listenFunc = func(net string, laddr string) (net.Listener, error) {
			return tls.Listen(net, laddr, &tlsConfig)
		}
	}

	listeners := make([]net.Listener, 0, len(cfg.Listeners))
	for _, addr := range cfg.Listeners {
		listener, err := listenFunc("tcp", addr)
		if err != nil {
			eccgLog.Warnf("Can't listen on %s: %v", addr, err)
			continue
		}
		listeners = append(listeners, listener)
	}
	if len(listeners) == 0 {
		return nil, errors.New("no valid listen address")
	}

	return listeners, nil
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Up some limits.
	if err := limits.SetLimits(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set limits: %v\n", err)
		os.Exit(1)
	}

	// Call serviceMain on Windows to handle running as a service.  When
	// the return isService flag is true, exit now since we ran as a
	// service.  Otherwise, just fall through to normal operation.
	if runtime.GOOS == "windows" {
		isService, err := winServiceMain()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if isService {
			os.Exit(0)
		}
	}

	// Work around defer not working after os.Exit()
	if err := eccgamedMain(nil); err != nil {
		os.Exit(1)
	}
}
