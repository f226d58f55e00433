// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/go-socks/socks"
	"github.com/btcsuite/websocket"
)

const (
	// connectionRetryInterval is the amount of time to wait in between
	// retries when automatically reconnecting to the server.  The interval
	// scales up with the number of retries.
	connectionRetryInterval = time.Second * 5

	// maxRetryInterval is the ceiling for the scaled retry interval.
	maxRetryInterval = time.Minute

	// ntfnTypeChallenge identifies a challenge rotation notification on
	// the wire.
	ntfnTypeChallenge = "challenge"
)

// ChallengeHandler is invoked with the uuid of the newly activated challenge
// each time the server rotates the daily challenge.  The handler is called
// from the notification goroutine, so it must not block for long.
type ChallengeHandler func(uuid string)

// challengeNtfn is the notification payload the server broadcasts on
// challenge rotation.
type challengeNtfn struct {
	Type string `json:"type"`
	UUID string `json:"uuid"`
}

// dialWS establishes a websocket connection to the notification endpoint
// using the proxy and TLS settings from the connection config.
func (c *Client) dialWS() (*websocket.Conn, error) {
	// Setup TLS if not disabled.
	var tlsConfig *tls.Config
	var scheme = "ws"
	if !c.config.DisableTLS {
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if len(c.config.Certificates) > 0 {
			pool := x509.NewCertPool()
			pool.AppendCertsFromPEM(c.config.Certificates)
			tlsConfig.RootCAs = pool
		}
		scheme = "wss"
	}

	// Create a websocket dialer that will be used to make the connection.
	// It is modified by the proxy setting below as needed.
	dialer := websocket.Dialer{TLSClientConfig: tlsConfig}

	// Setup the proxy if one is configured.
	if c.config.Proxy != "" {
		proxy := &socks.Proxy{
			Addr:     c.config.Proxy,
			Username: c.config.ProxyUser,
			Password: c.config.ProxyPass,
		}
		dialer.NetDial = proxy.Dial
	}

	endpoint := c.config.Endpoint
	if endpoint == "" {
		endpoint = "ws"
	}
	url := fmt.Sprintf("%s://%s/%s", scheme, c.config.Host, endpoint)
	wsConn, resp, err := dialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%s (status %d)", err, resp.StatusCode)
		}
		return nil, err
	}
	return wsConn, nil
}

// setWSConn swaps the tracked websocket connection so Shutdown can close it
// and unblock a pending read.
func (c *Client) setWSConn(conn *websocket.Conn) {
	c.mtx.Lock()
	c.wsConn = conn
	c.mtx.Unlock()
}

// NotifyChallenges subscribes to challenge rotation notifications and
// invokes the handler for every rotation the server announces.  Unless
// automatic reconnection is disabled in the connection config, the
// subscription survives dropped connections by redialing with a scaled
// backoff until Shutdown is called.  Rotations that happen while the
// connection is down are not replayed, so callers that must not miss one
// should fetch the daily challenge after reconnecting.
func (c *Client) NotifyChallenges(handler ChallengeHandler) error {
	if handler == nil {
		return errors.New("a challenge handler is required")
	}

	c.mtx.Lock()
	select {
	case <-c.shutdown:
		c.mtx.Unlock()
		return ErrClientShutdown
	default:
	}
	if c.notifyActive {
		c.mtx.Unlock()
		return ErrNotificationsRunning
	}
	c.notifyActive = true
	c.mtx.Unlock()

	conn, err := c.dialWS()
	if err != nil {
		if c.config.DisableAutoReconnect {
			c.mtx.Lock()
			c.notifyActive = false
			c.mtx.Unlock()
			return err
		}
		log.Infof("Failed to connect to %s: %v", c.config.Host, err)
	} else {
		c.setWSConn(conn)
	}

	c.wg.Add(1)
	go c.ntfnHandler(conn, handler)
	return nil
}

// ntfnHandler reads rotation notifications from the websocket connection
// and dispatches them to the handler.  It reconnects on read failures until
// the client shuts down, unless automatic reconnection is disabled.  It must
// be run as a goroutine.
func (c *Client) ntfnHandler(conn *websocket.Conn, handler ChallengeHandler) {
	defer c.wg.Done()

	var retryCount int64
out:
	for {
		if conn == nil {
			select {
			case <-c.shutdown:
				break out
			default:
			}

			var err error
			conn, err = c.dialWS()
			if err != nil {
				retryCount++
				scaledInterval := connectionRetryInterval.Nanoseconds() * retryCount
				scaledDuration := time.Duration(scaledInterval)
				if scaledDuration > maxRetryInterval {
					scaledDuration = maxRetryInterval
				}
				log.Infof("Failed to connect to %s: %v",
					c.config.Host, err)
				log.Infof("Retrying connection to %s in %s",
					c.config.Host, scaledDuration)
				select {
				case <-time.After(scaledDuration):
				case <-c.shutdown:
					break out
				}
				continue
			}

			log.Infof("Reestablished connection to game server %s",
				c.config.Host)
			retryCount = 0
			c.setWSConn(conn)
		}

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				conn.Close()
				c.setWSConn(nil)
				conn = nil
				break
			}

			var ntfn challengeNtfn
			if err := json.Unmarshal(msg, &ntfn); err != nil {
				log.Warnf("Ignoring malformed notification: %v",
					err)
				continue
			}
			if ntfn.Type != ntfnTypeChallenge {
				log.Debugf("Ignoring notification of unknown "+
					"type %q", ntfn.Type)
				continue
			}

			log.Debugf("Challenge rotated to %s", ntfn.UUID)
			handler(ntfn.UUID)
		}

		select {
		case <-c.shutdown:
			break out
		default:
		}
		if c.config.DisableAutoReconnect {
			break out
		}
	}

	log.Tracef("Notification handler done for %s", c.config.Host)
}
