// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package server implements the public REST and websocket surface of the
// game daemon.  It serves the daily challenge, accepts signed solutions and
// saved points, and pushes a notification to connected websocket clients
// whenever the daily challenge rotates.
package server

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/decred/dcrd/lru"
)

const (
	// defaultMaxBodySize is the request body cap applied when the config
	// does not set one.  Submissions are a public key and a signature in
	// hex, so even generous metadata fits well below this.
	defaultMaxBodySize = 1 << 16

	// defaultMaxWebsockets is the maximum number of concurrent websocket
	// clients when the config does not set one.
	defaultMaxWebsockets = 25

	// defaultReplayCacheSize is the number of recent (challenge, key)
	// submissions remembered for replay rejection when the config does
	// not set one.
	defaultReplayCacheSize = 1000
)

// Config holds the game server settings.  Listeners are handed over ready
// made so the caller decides about TLS.
type Config struct {
	// Listeners are the sockets the server accepts connections on.  The
	// server takes ownership and closes them on Stop.
	Listeners []net.Listener

	// Store is the challenge store backing every endpoint.
	Store *challenge.Store

	// MaxBodySize caps the size of accepted request bodies in bytes.
	MaxBodySize int64

	// MaxWebsockets caps the number of concurrent websocket clients.
	MaxWebsockets int

	// ReplayCacheSize is the number of recent solution submissions kept
	// for replay rejection.
	ReplayCacheSize uint
}

// Server is the game API server.  Use New to create one, then Start.
type Server struct {
	started  int32
	shutdown int32

	cfg         Config
	ntfnMgr     *wsNotificationManager
	replayCache lru.Cache
	wg          sync.WaitGroup
	quit        chan struct{}
}

// New returns a game server for the given config.
func New(config *Config) (*Server, error) {
	if config.Store == nil {
		return nil, errors.New("game server requires a challenge store")
	}
	if len(config.Listeners) == 0 {
		return nil, errors.New("game server requires at least one listener")
	}

	cfg := *config
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.MaxWebsockets <= 0 {
		cfg.MaxWebsockets = defaultMaxWebsockets
	}
	if cfg.ReplayCacheSize == 0 {
		cfg.ReplayCacheSize = defaultReplayCacheSize
	}

	s := &Server{
		cfg:         cfg,
		replayCache: lru.NewCache(cfg.ReplayCacheSize),
		quit:        make(chan struct{}),
	}
	s.ntfnMgr = newWsNotificationManager(s)
	return s, nil
}

// Start begins accepting connections on the configured listeners and starts
// the notification manager and the midnight rotation handler.
func (s *Server) Start() {
	if atomic.AddInt32(&s.started, 1) != 1 {
		return
	}

	log.Trace("Starting game API server")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/daily", s.handleDaily)
	mux.HandleFunc("/api/v1/challenges/", s.handleChallenges)
	mux.HandleFunc("/ws", s.handleWebsocket)

	httpServer := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.LoadInt32(&s.shutdown) != 0 {
				http.Error(w, "503 Service Unavailable",
					http.StatusServiceUnavailable)
				return
			}
			log.Debugf("%s %s from %s", r.Method, r.URL.Path,
				r.RemoteAddr)
			mux.ServeHTTP(w, r)
		}),
	}

	for _, listener := range s.cfg.Listeners {
		s.wg.Add(1)
		go func(listener net.Listener) {
			log.Infof("Game API server listening on %s", listener.Addr())
			httpServer.Serve(listener)
			log.Tracef("Game API listener done for %s", listener.Addr())
			s.wg.Done()
		}(listener)
	}

	s.ntfnMgr.Start()

	s.wg.Add(1)
	go s.rotationHandler()
}

// Stop closes the listeners, shuts down the notification manager, and waits
// for all server goroutines to finish.
func (s *Server) Stop() error {
	if atomic.AddInt32(&s.shutdown, 1) != 1 {
		log.Infof("Game API server is already in the process of shutting down")
		return nil
	}

	log.Warnf("Game API server shutting down")
	for _, listener := range s.cfg.Listeners {
		if err := listener.Close(); err != nil {
			log.Errorf("Problem shutting down game API server: %v", err)
			return err
		}
	}
	s.ntfnMgr.Shutdown()
	s.ntfnMgr.WaitForShutdown()
	close(s.quit)
	s.wg.Wait()
	log.Infof("Game API server shutdown complete")
	return nil
}

// WaitForShutdown blocks until the server goroutines have finished.
func (s *Server) WaitForShutdown() {
	s.wg.Wait()
}

// dailyChallenge resolves today's challenge through the store and pushes a
// websocket notification when the call rotated a new one in.
func (s *Server) dailyChallenge() (*challenge.Challenge, error) {
	ch, rotated, err := s.cfg.Store.DailyChallenge(time.Now())
	if err != nil {
		return nil, err
	}
	if rotated {
		s.ntfnMgr.NotifyChallengeRotated(ch)
	}
	return ch, nil
}

// rotationHandler re-evaluates the daily challenge at every UTC midnight so
// rotation does not depend on request traffic.  It must be run as a
// goroutine.
func (s *Server) rotationHandler() {
out:
	for {
		now := time.Now().UTC()
		next := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			if _, err := s.dailyChallenge(); err != nil {
				log.Warnf("Daily challenge rotation failed: %v", err)
			}
		case <-s.quit:
			timer.Stop()
			break out
		}
	}
	s.wg.Done()
	log.Trace("Rotation handler done")
}
