// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"context"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rizato/eccgame-sub003/address"
	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/Rizato/eccgame-sub003/database/engine/leveldb"
	"github.com/Rizato/eccgame-sub003/server"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/websocket"
	"github.com/stretchr/testify/require"
)

const missingUUID = "00000000-0000-0000-0000-000000000000"

func newTestStore(t *testing.T) *challenge.Store {
	t.Helper()

	db, err := leveldb.NewDB(filepath.Join(t.TempDir(), "client-store"), true)
	require.NoError(t, err)
	store := challenge.NewStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

// startGameServer runs a real game server on an ephemeral port and returns
// the host to point a client at.
func startGameServer(t *testing.T, store *challenge.Store) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s, err := server.New(&server.Config{
		Listeners: []net.Listener{listener},
		Store:     store,
	})
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { s.Stop() })
	return listener.Addr().String()
}

func addChallenge(t *testing.T, store *challenge.Store, k int64) *challenge.Challenge {
	t.Helper()

	ch, err := challenge.GenerateFromScalar(big.NewInt(k), "", nil,
		&address.MainNetParams)
	require.NoError(t, err)
	require.NoError(t, store.AddChallenge(ch))
	return ch
}

func testPriv(t *testing.T, k int64) *btcec.PrivateKey {
	t.Helper()

	priv, _ := btcec.PrivKeyFromBytes(curve.S256().ScalarBytes(big.NewInt(k)))
	return priv
}

func newTestClient(t *testing.T, host string) *Client {
	t.Helper()

	c, err := New(&ConnConfig{Host: host, DisableTLS: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Shutdown()
		c.WaitForShutdown()
	})
	return c
}

func TestClientChallenges(t *testing.T) {
	store := newTestStore(t)
	ch := addChallenge(t, store, 5)
	c := newTestClient(t, startGameServer(t, store))
	ctx := context.Background()

	daily, err := c.DailyChallenge(ctx)
	require.NoError(t, err)
	require.Equal(t, ch.UUID, daily.UUID)
	require.Equal(t, ch.PublicKey, daily.PublicKey)
	require.True(t, daily.Active)

	got, err := c.Challenge(ctx, ch.UUID)
	require.NoError(t, err)
	require.Equal(t, daily, got)

	sols, err := c.Solutions(ctx, ch.UUID)
	require.NoError(t, err)
	require.Empty(t, sols)

	// A cancelled context aborts the request before it is issued.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.DailyChallenge(cancelled)
	require.Error(t, err)
}

func TestClientAPIError(t *testing.T) {
	store := newTestStore(t)
	c := newTestClient(t, startGameServer(t, store))
	ctx := context.Background()

	_, err := c.Challenge(ctx, missingUUID)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "challenge not found", apiErr.Message)

	// The store holds no challenges at all, so there is nothing to rotate
	// in for the day.
	_, err = c.DailyChallenge(ctx)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestClientSubmitSolution(t *testing.T) {
	store := newTestStore(t)
	ch := addChallenge(t, store, 5)
	c := newTestClient(t, startGameServer(t, store))
	ctx := context.Background()

	// Solutions are only accepted for the active challenge.
	_, err := c.DailyChallenge(ctx)
	require.NoError(t, err)

	pubKey, sig, err := challenge.SignSolution(testPriv(t, 5), ch.UUID)
	require.NoError(t, err)
	sol, err := c.SubmitSolution(ctx, ch.UUID, pubKey, sig)
	require.NoError(t, err)
	require.Equal(t, ch.UUID, sol.ChallengeUUID)
	require.Equal(t, challenge.ResultCorrect, sol.Result)

	// Replaying the same key is rejected by the server.
	_, err = c.SubmitSolution(ctx, ch.UUID, pubKey, sig)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)

	// A valid signature over the wrong key grades as incorrect rather
	// than erroring.
	missKey, missSig, err := challenge.SignSolution(testPriv(t, 7), ch.UUID)
	require.NoError(t, err)
	miss, err := c.SubmitSolution(ctx, ch.UUID, missKey, missSig)
	require.NoError(t, err)
	require.Equal(t, challenge.ResultIncorrect, miss.Result)

	sols, err := c.Solutions(ctx, ch.UUID)
	require.NoError(t, err)
	require.Len(t, sols, 2)
}

func TestClientSavePoint(t *testing.T) {
	store := newTestStore(t)
	ch := addChallenge(t, store, 5)
	c := newTestClient(t, startGameServer(t, store))
	ctx := context.Background()

	pubKey, _, err := challenge.SignSolution(testPriv(t, 9), ch.UUID)
	require.NoError(t, err)

	save, err := c.SavePoint(ctx, ch.UUID, pubKey, "halfway there")
	require.NoError(t, err)
	require.Equal(t, ch.UUID, save.ChallengeUUID)
	require.Equal(t, "halfway there", save.Label)
	require.NotEmpty(t, save.UUID)

	unlabeled, err := c.SavePoint(ctx, ch.UUID, pubKey, "")
	require.NoError(t, err)
	require.Empty(t, unlabeled.Label)
	require.NotEqual(t, save.UUID, unlabeled.UUID)

	_, err = c.SavePoint(ctx, ch.UUID, "zz", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

var testUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// startNtfnServer runs a bare websocket endpoint that serves a scripted
// sequence of notifications.  Every connection but the last is closed by
// the server after its message is written, which forces the client through
// its reconnect path.  The returned host is suitable for a ConnConfig.
func startNtfnServer(t *testing.T, messages [][]string) string {
	t.Helper()

	var connCount int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		seq := int(atomic.AddInt32(&connCount, 1)) - 1
		if seq >= len(messages) {
			conn.Close()
			return
		}
		for _, msg := range messages[seq] {
			if err := conn.WriteMessage(websocket.TextMessage,
				[]byte(msg)); err != nil {

				conn.Close()
				return
			}
		}
		if seq < len(messages)-1 {
			conn.Close()
			return
		}

		// Final connection stays up to service the client until the
		// test ends.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func waitForUUID(t *testing.T, ch chan string, want string) {
	t.Helper()

	select {
	case got := <-ch:
		require.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for notification %s", want)
	}
}

func TestClientNotify(t *testing.T) {
	// The first connection delivers junk the client must skip, then a real
	// rotation, and is then dropped by the server.  The redial immediately
	// succeeds, so no backoff is involved.
	host := startNtfnServer(t, [][]string{
		{
			"not json",
			`{"type":"status","uuid":"ignored"}`,
			`{"type":"challenge","uuid":"uuid-one"}`,
		},
		{
			`{"type":"challenge","uuid":"uuid-two"}`,
		},
	})

	c, err := New(&ConnConfig{Host: host, DisableTLS: true})
	require.NoError(t, err)

	uuids := make(chan string, 4)
	err = c.NotifyChallenges(func(uuid string) {
		uuids <- uuid
	})
	require.NoError(t, err)

	waitForUUID(t, uuids, "uuid-one")
	waitForUUID(t, uuids, "uuid-two")

	c.Shutdown()
	done := make(chan struct{})
	go func() {
		c.WaitForShutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for client shutdown")
	}
}

func TestClientNotifyErrors(t *testing.T) {
	host := startNtfnServer(t, [][]string{{}})

	c, err := New(&ConnConfig{Host: host, DisableTLS: true})
	require.NoError(t, err)

	require.Error(t, c.NotifyChallenges(nil))

	require.NoError(t, c.NotifyChallenges(func(string) {}))
	require.ErrorIs(t, c.NotifyChallenges(func(string) {}),
		ErrNotificationsRunning)

	c.Shutdown()
	c.WaitForShutdown()
	require.ErrorIs(t, c.NotifyChallenges(func(string) {}),
		ErrClientShutdown)
}

func TestClientNotifyDisableAutoReconnect(t *testing.T) {
	// Nothing listens on the reserved port, so the initial dial fails and
	// is surfaced directly when reconnects are disabled.
	c, err := New(&ConnConfig{
		Host:                 "127.0.0.1:1",
		DisableTLS:           true,
		DisableAutoReconnect: true,
	})
	require.NoError(t, err)
	require.Error(t, c.NotifyChallenges(func(string) {}))

	// With a live server the subscription delivers until the server drops
	// the connection, at which point the handler goroutine winds down on
	// its own.
	host := startNtfnServer(t, [][]string{
		{`{"type":"challenge","uuid":"uuid-one"}`},
		{},
	})
	c, err = New(&ConnConfig{
		Host:                 host,
		DisableTLS:           true,
		DisableAutoReconnect: true,
	})
	require.NoError(t, err)

	uuids := make(chan string, 1)
	require.NoError(t, c.NotifyChallenges(func(uuid string) {
		uuids <- uuid
	}))
	waitForUUID(t, uuids, "uuid-one")

	done := make(chan struct{})
	go func() {
		c.WaitForShutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for handler goroutine to exit")
	}
}
