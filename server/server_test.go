// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Rizato/eccgame-sub003/address"
	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/Rizato/eccgame-sub003/database/engine/leveldb"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *challenge.Store {
	t.Helper()

	db, err := leveldb.NewDB(filepath.Join(t.TempDir(), "game-store"), true)
	require.NoError(t, err)
	store := challenge.NewStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

// startTestServer runs a server on an ephemeral port and returns its base
// URL.
func startTestServer(t *testing.T, store *challenge.Store, override func(*Config)) (*Server, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := Config{
		Listeners: []net.Listener{listener},
		Store:     store,
	}
	if override != nil {
		override(&cfg)
	}
	s, err := New(&cfg)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { s.Stop() })
	return s, "http://" + listener.Addr().String()
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

// doGet issues a GET and decodes the response body into v when non-nil.
func doGet(t *testing.T, url string, v interface{}) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func doPost(t *testing.T, url string, body, v interface{}) int {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)
	return doPostRaw(t, url, buf, v)
}

func doPostRaw(t *testing.T, url string, body []byte, v interface{}) int {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestNewConfigValidation(t *testing.T) {
	_, err := New(&Config{})
	require.Error(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	_, err = New(&Config{Listeners: []net.Listener{listener}})
	require.Error(t, err)
}

func TestDailyEndpoint(t *testing.T) {
	store := newTestStore(t)
	addChallenge(t, store, 3)
	_, base := startTestServer(t, store, nil)

	var daily challenge.Challenge
	status := doGet(t, base+"/api/v1/daily", &daily)
	require.Equal(t, http.StatusOK, status)
	require.True(t, daily.Active)
	require.NotEmpty(t, daily.ActiveDate)
	_, err := curve.S256().ParsePointHex(daily.PublicKey)
	require.NoError(t, err)

	// The same challenge comes back for the rest of the day.
	var again challenge.Challenge
	status = doGet(t, base+"/api/v1/daily", &again)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, daily.UUID, again.UUID)

	var errBody apiError
	status = doPostRaw(t, base+"/api/v1/daily", nil, &errBody)
	require.Equal(t, http.StatusMethodNotAllowed, status)
	require.NotEmpty(t, errBody.Error)
}

func TestDailyEndpointExhausted(t *testing.T) {
	store := newTestStore(t)
	_, base := startTestServer(t, store, nil)

	var errBody apiError
	status := doGet(t, base+"/api/v1/daily", &errBody)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.NotEmpty(t, errBody.Error)
}

func TestChallengeDetailEndpoint(t *testing.T) {
	store := newTestStore(t)
	ch := addChallenge(t, store, 3)
	_, base := startTestServer(t, store, nil)

	var got challenge.Challenge
	status := doGet(t, base+"/api/v1/challenges/"+ch.UUID, &got)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, ch.UUID, got.UUID)
	require.Equal(t, ch.PublicKey, got.PublicKey)

	status = doGet(t, base+"/api/v1/challenges/00000000-0000-0000-0000-000000000000", nil)
	require.Equal(t, http.StatusNotFound, status)

	status = doGet(t, base+"/api/v1/challenges/"+ch.UUID+"/bogus", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSolutionEndpoint(t *testing.T) {
	store := newTestStore(t)
	ch := addChallenge(t, store, 7)
	_, base := startTestServer(t, store, nil)

	// Activate the challenge the way a player would.
	status := doGet(t, base+"/api/v1/daily", nil)
	require.Equal(t, http.StatusOK, status)

	pubKey, sig, err := challenge.SignSolution(testPriv(t, 7), ch.UUID)
	require.NoError(t, err)

	solutionURL := base + "/api/v1/challenges/" + ch.UUID + "/solution"
	var sol challenge.Solution
	status = doPost(t, solutionURL, &solutionRequest{PublicKey: pubKey, Signature: sig}, &sol)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, challenge.ResultCorrect, sol.Result)
	require.True(t, sol.IsSignatureValid)
	require.True(t, sol.IsKeyValid)

	// Replaying the same key is rejected before the store is touched.
	status = doPost(t, solutionURL, &solutionRequest{PublicKey: pubKey, Signature: sig}, nil)
	require.Equal(t, http.StatusConflict, status)

	// A different key is an honest miss and is recorded.
	missKey, missSig, err := challenge.SignSolution(testPriv(t, 8), ch.UUID)
	require.NoError(t, err)
	status = doPost(t, solutionURL, &solutionRequest{PublicKey: missKey, Signature: missSig}, &sol)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, challenge.ResultIncorrect, sol.Result)

	// Malformed submissions.  The bad signature rides a key that has not
	// been submitted yet so the replay check cannot short circuit it.
	status = doPostRaw(t, solutionURL, []byte("{"), nil)
	require.Equal(t, http.StatusBadRequest, status)
	freshKey, _, err := challenge.SignSolution(testPriv(t, 10), ch.UUID)
	require.NoError(t, err)
	status = doPost(t, solutionURL, &solutionRequest{PublicKey: freshKey, Signature: "zz"}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status = doPost(t, base+"/api/v1/challenges/00000000-0000-0000-0000-000000000000/solution",
		&solutionRequest{PublicKey: pubKey, Signature: sig}, nil)
	require.Equal(t, http.StatusNotFound, status)

	// Solutions for a challenge that is not today's are forbidden.
	inactive := addChallenge(t, store, 9)
	inactiveKey, inactiveSig, err := challenge.SignSolution(testPriv(t, 9), inactive.UUID)
	require.NoError(t, err)
	status = doPost(t, base+"/api/v1/challenges/"+inactive.UUID+"/solution",
		&solutionRequest{PublicKey: inactiveKey, Signature: inactiveSig}, nil)
	require.Equal(t, http.StatusForbidden, status)
}

func TestSolutionsEndpoint(t *testing.T) {
	store := newTestStore(t)
	ch := addChallenge(t, store, 7)
	_, base := startTestServer(t, store, nil)

	status := doGet(t, base+"/api/v1/daily", nil)
	require.Equal(t, http.StatusOK, status)

	listURL := base + "/api/v1/challenges/" + ch.UUID + "/solutions"
	var solutions []*challenge.Solution
	status = doGet(t, listURL, &solutions)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, solutions)

	pubKey, sig, err := challenge.SignSolution(testPriv(t, 7), ch.UUID)
	require.NoError(t, err)
	status = doPost(t, base+"/api/v1/challenges/"+ch.UUID+"/solution",
		&solutionRequest{PublicKey: pubKey, Signature: sig}, nil)
	require.Equal(t, http.StatusCreated, status)

	status = doGet(t, listURL, &solutions)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, solutions, 1)
	require.Equal(t, challenge.ResultCorrect, solutions[0].Result)
}

func TestSaveEndpoint(t *testing.T) {
	store := newTestStore(t)

	// The challenge is never activated: saves are accepted regardless.
	ch := addChallenge(t, store, 7)
	_, base := startTestServer(t, store, nil)

	pubKey := ch.PublicKey
	saveURL := base + "/api/v1/challenges/" + ch.UUID + "/save"

	var first challenge.Save
	status := doPost(t, saveURL, &saveRequest{PublicKey: pubKey, Label: "start"}, &first)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "start", first.Label)

	// Duplicates are fine and get their own identity.
	var second challenge.Save
	status = doPost(t, saveURL, &saveRequest{PublicKey: pubKey, Label: "start"}, &second)
	require.Equal(t, http.StatusCreated, status)
	require.NotEqual(t, first.UUID, second.UUID)

	status = doPost(t, saveURL, &saveRequest{PublicKey: "not-a-key"}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status = doPost(t, base+"/api/v1/challenges/00000000-0000-0000-0000-000000000000/save",
		&saveRequest{PublicKey: pubKey}, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestMaxBodySize(t *testing.T) {
	store := newTestStore(t)
	ch := addChallenge(t, store, 7)
	_, base := startTestServer(t, store, func(cfg *Config) {
		cfg.MaxBodySize = 16
	})

	pubKey, sig, err := challenge.SignSolution(testPriv(t, 7), ch.UUID)
	require.NoError(t, err)
	status := doPost(t, base+"/api/v1/challenges/"+ch.UUID+"/solution",
		&solutionRequest{PublicKey: pubKey, Signature: sig}, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestWebsocketNotification(t *testing.T) {
	store := newTestStore(t)
	addChallenge(t, store, 3)
	s, base := startTestServer(t, store, nil)

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool {
		return s.ntfnMgr.NumClients() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// The first daily request rotates a challenge in, which must reach
	// the websocket client.
	var daily challenge.Challenge
	status := doGet(t, base+"/api/v1/daily", &daily)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ntfn challengeNtfn
	require.NoError(t, json.Unmarshal(msg, &ntfn))
	require.Equal(t, ntfnTypeChallenge, ntfn.Type)
	require.Equal(t, daily.UUID, ntfn.UUID)

	conn.Close()
	require.Eventually(t, func() bool {
		return s.ntfnMgr.NumClients() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestMaxWebsockets(t *testing.T) {
	store := newTestStore(t)
	s, base := startTestServer(t, store, func(cfg *Config) {
		cfg.MaxWebsockets = 1
	})

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	first, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer first.Close()

	require.Eventually(t, func() bool {
		return s.ntfnMgr.NumClients() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// The second client upgrades but is dropped immediately.
	second, resp2, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	defer second.Close()

	require.NoError(t, second.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = second.ReadMessage()
	require.Error(t, err)
	require.Equal(t, 1, s.ntfnMgr.NumClients())
}

func TestServerStop(t *testing.T) {
	store := newTestStore(t)
	s, base := startTestServer(t, store, nil)

	require.NoError(t, s.Stop())
	_, err := http.Get(base + "/api/v1/daily")
	require.Error(t, err)

	// Stopping again is a no-op.
	require.NoError(t, s.Stop())
}
