// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package client implements a REST and websocket client for the game
// daemon.  It mirrors the public API surface of the server package, so a
// command line tool or a bot can fetch the daily challenge, submit
// solutions, save points worth sharing, and subscribe to challenge rotation
// notifications without dealing with HTTP plumbing.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/btcsuite/go-socks/socks"
	"github.com/btcsuite/websocket"

	"github.com/Rizato/eccgame-sub003/challenge"
)

// ConnConfig describes the connection configuration parameters for the
// client.
type ConnConfig struct {
	// Host is the IP address and port of the game server you want to
	// connect to.
	Host string

	// Endpoint is the websocket endpoint on the game server.  This is
	// typically "ws".
	Endpoint string

	// DisableTLS specifies whether transport layer security should be
	// disabled.  It is recommended to always use TLS if the game server
	// supports it as otherwise submitted solutions can be observed and
	// replayed by anyone on the path.
	DisableTLS bool

	// Certificates are the bytes for a PEM-encoded certificate chain used
	// for the TLS connection.  It has no effect if the DisableTLS
	// parameter is true.
	Certificates []byte

	// Proxy specifies to connect through a SOCKS 5 proxy server.  It may
	// be an empty string if a proxy is not required.
	Proxy string

	// ProxyUser is an optional username to use for the proxy server if it
	// requires authentication.  It has no effect if the Proxy parameter
	// is not set.
	ProxyUser string

	// ProxyPass is an optional password to use for the proxy server if it
	// requires authentication.  It has no effect if the Proxy parameter
	// is not set.
	ProxyPass string

	// DisableAutoReconnect specifies the client should not automatically
	// try to reconnect to the server when the notification connection has
	// been dropped.
	DisableAutoReconnect bool
}

// newHTTPClient returns a new http client that is configured according to
// the proxy and TLS settings in the associated connection configuration.
func newHTTPClient(config *ConnConfig) (*http.Client, error) {
	// Configure proxy if needed.
	var dial func(network, addr string) (net.Conn, error)
	if config.Proxy != "" {
		proxy := &socks.Proxy{
			Addr:     config.Proxy,
			Username: config.ProxyUser,
			Password: config.ProxyPass,
		}
		dial = func(network, addr string) (net.Conn, error) {
			c, err := proxy.Dial(network, addr)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}

	// Configure TLS if needed.
	var tlsConfig *tls.Config
	if !config.DisableTLS {
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if len(config.Certificates) > 0 {
			pool := x509.NewCertPool()
			pool.AppendCertsFromPEM(config.Certificates)
			tlsConfig.RootCAs = pool
		}
	}

	client := http.Client{
		Transport: &http.Transport{
			Dial:            dial,
			TLSClientConfig: tlsConfig,
		},
	}

	return &client, nil
}

// Client represents a game server client.  All of the methods issue plain
// REST requests except NotifyChallenges, which maintains a websocket
// connection to the server for the lifetime of the client.
type Client struct {
	config *ConnConfig

	// httpClient is the underlying client used to issue the REST
	// requests.  It carries the TLS and proxy configuration.
	httpClient *http.Client

	// mtx guards the websocket connection and the notification state.
	mtx          sync.Mutex
	wsConn       *websocket.Conn
	notifyActive bool

	wg       sync.WaitGroup
	shutdown chan struct{}
}

// New creates a new client for the game server described by the connection
// config.  The returned client issues requests lazily, so no connection is
// attempted until the first method call.
func New(config *ConnConfig) (*Client, error) {
	httpClient, err := newHTTPClient(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		config:     config,
		httpClient: httpClient,
		shutdown:   make(chan struct{}),
	}
	return client, nil
}

// Shutdown shuts down the client, terminating the notification connection
// if one is active.  It is safe to call multiple times.
func (c *Client) Shutdown() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	// Ignore the shutdown request if the client is already in the process
	// of shutting down or already shutdown.
	select {
	case <-c.shutdown:
		return
	default:
	}

	log.Tracef("Shutting down game client %s", c.config.Host)
	close(c.shutdown)
	if c.wsConn != nil {
		c.wsConn.Close()
	}
}

// WaitForShutdown blocks until the client goroutines are done.  This is
// only meaningful after Shutdown has been called.
func (c *Client) WaitForShutdown() {
	c.wg.Wait()
}

// requestURL builds the absolute URL for the given server path using the
// scheme dictated by the TLS configuration.
func (c *Client) requestURL(path string) string {
	protocol := "https"
	if c.config.DisableTLS {
		protocol = "http"
	}
	return protocol + "://" + c.config.Host + path
}

// do issues the request and decodes a successful response into result when
// result is non-nil.  Failure responses are converted into an *APIError
// carrying the status code and the server-provided message.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil &&
			body.Error != "" {

			apiErr.Message = body.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// get issues a GET request against the given server path.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.requestURL(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

// post issues a POST request with a JSON body against the given server
// path.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.requestURL(path), bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

// solutionRequest is the request body for submitting a solution.
type solutionRequest struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// saveRequest is the request body for saving a point.
type saveRequest struct {
	PublicKey string `json:"public_key"`
	Label     string `json:"label,omitempty"`
}

// DailyChallenge fetches the challenge for the current day.  The server
// rotates a new challenge in when the UTC day has changed since the last
// request, so polling this endpoint is enough to follow the game.
func (c *Client) DailyChallenge(ctx context.Context) (*challenge.Challenge, error) {
	var ch challenge.Challenge
	if err := c.get(ctx, "/api/v1/daily", &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Challenge fetches the challenge with the given uuid regardless of whether
// it is the active one.
func (c *Client) Challenge(ctx context.Context, uuid string) (*challenge.Challenge, error) {
	var ch challenge.Challenge
	err := c.get(ctx, "/api/v1/challenges/"+uuid, &ch)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// SubmitSolution submits a claimed private key for the challenge with the
// given uuid.  The public key and the compact signature over the challenge
// uuid are hex encoded, exactly as produced by challenge.SignSolution.  The
// private key itself never leaves the caller.
func (c *Client) SubmitSolution(ctx context.Context, uuid, pubKeyHex, signatureHex string) (*challenge.Solution, error) {
	body := &solutionRequest{
		PublicKey: pubKeyHex,
		Signature: signatureHex,
	}
	var sol challenge.Solution
	err := c.post(ctx, "/api/v1/challenges/"+uuid+"/solution", body, &sol)
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

// Solutions fetches all graded solutions recorded for the challenge with
// the given uuid.
func (c *Client) Solutions(ctx context.Context, uuid string) ([]*challenge.Solution, error) {
	var sols []*challenge.Solution
	err := c.get(ctx, "/api/v1/challenges/"+uuid+"/solutions", &sols)
	if err != nil {
		return nil, err
	}
	return sols, nil
}

// SavePoint records a point of interest against the challenge with the
// given uuid.  The label is optional.
func (c *Client) SavePoint(ctx context.Context, uuid, pubKeyHex, label string) (*challenge.Save, error) {
	body := &saveRequest{
		PublicKey: pubKeyHex,
		Label:     label,
	}
	var save challenge.Save
	err := c.post(ctx, "/api/v1/challenges/"+uuid+"/save", body, &save)
	if err != nil {
		return nil, err
	}
	return &save, nil
}
