// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/gorilla/websocket"
)

const (
	// websocketSendBufferSize is the number of notifications a client's
	// send channel can queue before the client is considered too slow and
	// disconnected.
	websocketSendBufferSize = 50

	// ntfnTypeChallenge identifies a daily challenge rotation event.
	ntfnTypeChallenge = "challenge"
)

// ErrClientQuit describes an error where a client send is not processed due
// to the client having already been disconnected.
var ErrClientQuit = errors.New("client quit")

// challengeNtfn is the payload pushed to websocket clients when the daily
// challenge rotates.
type challengeNtfn struct {
	Type string `json:"type"`
	UUID string `json:"uuid"`
}

// wsUpgrader upgrades HTTP connections on the websocket endpoint.  The game
// is served to browsers from arbitrary origins, so no origin check applies.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWebsocket upgrades the connection and hands it to the notification
// machinery for the rest of its lifetime.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Unexpected websocket error from %s: %v", r.RemoteAddr, err)
		return
	}
	s.WebsocketHandler(conn, r.RemoteAddr)
}

// WebsocketHandler handles a new websocket client by creating a new
// wsClient, starting it, and blocking until the connection closes.  It runs
// in the connection's serve goroutine.
func (s *Server) WebsocketHandler(conn *websocket.Conn, remoteAddr string) {
	log.Infof("New websocket client %s", remoteAddr)
	if s.ntfnMgr.NumClients()+1 > s.cfg.MaxWebsockets {
		log.Infof("Max websocket clients exceeded [%d] - "+
			"disconnecting client %s", s.cfg.MaxWebsockets, remoteAddr)
		conn.Close()
		return
	}

	// Create a new websocket client to handle the new websocket connection
	// and wait for it to shutdown.  Once it has shutdown (and hence
	// disconnected), remove it.
	client := newWebsocketClient(s, conn, remoteAddr)
	s.ntfnMgr.AddClient(client)
	client.Start()
	client.WaitForShutdown()
	s.ntfnMgr.RemoveClient(client)
	log.Infof("Disconnected websocket client %s", remoteAddr)
}

// Notification types
type notificationChallengeRotated challenge.Challenge

// Notification control requests
type notificationRegisterClient wsClient
type notificationUnregisterClient wsClient

// wsNotificationManager tracks connected websocket clients and fans
// rotation notifications out to them.  All state lives in the notification
// handler goroutine, so no mutex guards the client set.
type wsNotificationManager struct {
	server            *Server
	queueNotification chan interface{}
	notificationMsgs  chan interface{}
	numClients        chan int
	wg                sync.WaitGroup
	quit              chan struct{}
}

func newWsNotificationManager(server *Server) *wsNotificationManager {
	return &wsNotificationManager{
		server:            server,
		queueNotification: make(chan interface{}),
		notificationMsgs:  make(chan interface{}),
		numClients:        make(chan int),
		quit:              make(chan struct{}),
	}
}

// Start starts the goroutines required for the manager to queue and process
// websocket client notifications.
func (m *wsNotificationManager) Start() {
	m.wg.Add(2)
	go m.queueHandler()
	go m.notificationHandler()
}

// Shutdown shuts down the manager, stopping the notification queue and
// notification handler goroutines.
func (m *wsNotificationManager) Shutdown() {
	close(m.quit)
}

// WaitForShutdown blocks until all notification manager goroutines have
// finished.
func (m *wsNotificationManager) WaitForShutdown() {
	m.wg.Wait()
}

func (m *wsNotificationManager) queueHandler() {
	queueHandler(m.queueNotification, m.notificationMsgs, m.quit)
	m.wg.Done()
}

// notificationHandler reads notifications and control messages from the
// queue handler and processes one at a time.
func (m *wsNotificationManager) notificationHandler() {
	// clients is a map of all currently connected websocket clients.
	clients := make(map[chan struct{}]*wsClient)
out:
	for {
		select {
		case n, ok := <-m.notificationMsgs:
			if !ok {
				// queueHandler quit.
				break out
			}
			switch n := n.(type) {
			case *notificationChallengeRotated:
				if len(clients) != 0 {
					m.notifyChallengeRotated(clients,
						(*challenge.Challenge)(n))
				}

			case *notificationRegisterClient:
				wsc := (*wsClient)(n)
				clients[wsc.quit] = wsc

			case *notificationUnregisterClient:
				wsc := (*wsClient)(n)
				delete(clients, wsc.quit)

			default:
				log.Warn("Unhandled notification type")
			}

		case m.numClients <- len(clients):

		case <-m.quit:
			// Server shutting down.
			break out
		}
	}

	for _, c := range clients {
		c.Disconnect()
	}
	m.wg.Done()
}

// NumClients returns the number of clients the manager is tracking.
func (m *wsNotificationManager) NumClients() (n int) {
	select {
	case n = <-m.numClients:
	case <-m.quit: // Use default n (0) if the server has shut down.
	}
	return
}

// AddClient adds the passed websocket client to the notification manager.
func (m *wsNotificationManager) AddClient(wsc *wsClient) {
	m.queueNotification <- (*notificationRegisterClient)(wsc)
}

// RemoveClient removes the passed websocket client from the notification
// manager.
func (m *wsNotificationManager) RemoveClient(wsc *wsClient) {
	select {
	case m.queueNotification <- (*notificationUnregisterClient)(wsc):
	case <-m.quit:
	}
}

// NotifyChallengeRotated queues a rotation event for fanout to connected
// clients.
func (m *wsNotificationManager) NotifyChallengeRotated(ch *challenge.Challenge) {
	select {
	case m.queueNotification <- (*notificationChallengeRotated)(ch):
	case <-m.quit:
	}
}

func (m *wsNotificationManager) notifyChallengeRotated(clients map[chan struct{}]*wsClient, ch *challenge.Challenge) {
	marshalledJSON, err := json.Marshal(&challengeNtfn{
		Type: ntfnTypeChallenge,
		UUID: ch.UUID,
	})
	if err != nil {
		log.Errorf("Failed to marshal challenge notification: %v", err)
		return
	}
	for _, wsc := range clients {
		wsc.QueueNotification(marshalledJSON)
	}
}

// queueHandler manages a queue of empty interfaces, reading from in and
// sending the oldest unsent to out.  This handler stops when either of the
// in or quit channels are closed, and closes out before returning, without
// waiting to send any variables still in the queue.
func queueHandler(in <-chan interface{}, out chan<- interface{}, quit <-chan struct{}) {
	var q []interface{}
	var dequeue chan<- interface{}
	skipQueue := out
	var next interface{}
out:
	for {
		select {
		case n, ok := <-in:
			if !ok {
				// Sender closed input channel.
				break out
			}

			// Either send to out immediately if skipQueue is
			// non-nil (queue is empty) and reader is ready,
			// or append to the queue and send later.
			select {
			case skipQueue <- n:
			default:
				q = append(q, n)
				dequeue = out
				skipQueue = nil
				next = q[0]
			}

		case dequeue <- next:
			copy(q, q[1:])
			q[len(q)-1] = nil // avoid leak
			q = q[:len(q)-1]
			if len(q) == 0 {
				dequeue = nil
				skipQueue = out
			} else {
				next = q[0]
			}

		case <-quit:
			break out
		}
	}
	close(out)
}

// wsClient provides an abstraction for handling one websocket client.  The
// read side of the connection only drains messages to detect disconnects;
// all meaningful traffic flows outward.
type wsClient struct {
	sync.Mutex

	// server is the game server servicing the client.
	server *Server

	// conn is the underlying websocket connection.
	conn *websocket.Conn

	// disconnected indicates whether or not the client is disconnected.
	disconnected bool

	// addr is the remote address of the client.
	addr string

	ntfnChan chan []byte
	quit     chan struct{}
	wg       sync.WaitGroup
}

func newWebsocketClient(server *Server, conn *websocket.Conn, remoteAddr string) *wsClient {
	return &wsClient{
		server:   server,
		conn:     conn,
		addr:     remoteAddr,
		ntfnChan: make(chan []byte, websocketSendBufferSize),
		quit:     make(chan struct{}),
	}
}

// Start begins processing input and output messages.
func (c *wsClient) Start() {
	log.Tracef("Starting websocket client %s", c.addr)

	c.wg.Add(2)
	go c.inHandler()
	go c.outHandler()
}

// Disconnect disconnects the websocket client.
func (c *wsClient) Disconnect() {
	c.Lock()
	defer c.Unlock()

	// Nothing to do if already disconnected.
	if c.disconnected {
		return
	}

	log.Tracef("Disconnecting websocket client %s", c.addr)
	close(c.quit)
	c.conn.Close()
	c.disconnected = true
}

// Disconnected returns whether or not the websocket client is disconnected.
func (c *wsClient) Disconnected() bool {
	c.Lock()
	isDisconnected := c.disconnected
	c.Unlock()

	return isDisconnected
}

// WaitForShutdown blocks until the websocket client goroutines are stopped
// and the connection is closed.
func (c *wsClient) WaitForShutdown() {
	c.wg.Wait()
}

// inHandler handles all incoming messages for the websocket connection.  No
// inbound message carries meaning on this endpoint; reading them services
// control frames and detects disconnects.  It must be run as a goroutine.
func (c *wsClient) inHandler() {
out:
	for {
		// Break out of the loop once the quit channel has been closed.
		// Use a non-blocking select here so we fall through otherwise.
		select {
		case <-c.quit:
			break out
		default:
		}

		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !c.Disconnected() {
				log.Tracef("Websocket receive error from %s: %v",
					c.addr, err)
			}
			break out
		}
	}

	// Ensure the connection is closed.
	c.Disconnect()
	c.wg.Done()
	log.Tracef("Websocket client input handler done for %s", c.addr)
}

// outHandler writes queued notifications to the websocket connection.  It
// must be run as a goroutine.
func (c *wsClient) outHandler() {
out:
	for {
		select {
		case msg := <-c.ntfnChan:
			err := c.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				c.Disconnect()
				break out
			}

		case <-c.quit:
			break out
		}
	}

	// Drain the notification channel before exiting so nothing is left
	// waiting around to send.
cleanup:
	for {
		select {
		case <-c.ntfnChan:
		default:
			break cleanup
		}
	}
	c.wg.Done()
	log.Tracef("Websocket client output handler done for %s", c.addr)
}

// QueueNotification queues the passed notification for the client.  Clients
// that cannot keep up are disconnected rather than allowed to stall the
// notification handler.
func (c *wsClient) QueueNotification(marshalledJSON []byte) error {
	// Don't queue the message if disconnected.
	if c.Disconnected() {
		return ErrClientQuit
	}

	select {
	case c.ntfnChan <- marshalledJSON:
	default:
		c.Disconnect()
		return ErrClientQuit
	}
	return nil
}
