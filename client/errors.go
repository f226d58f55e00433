// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrClientShutdown is returned when the client has already been shut
	// down and a new request or notification registration is attempted.
	ErrClientShutdown = errors.New("the client has been shutdown")

	// ErrNotificationsRunning is returned when challenge notifications
	// have already been registered on the client.
	ErrNotificationsRunning = errors.New("notifications are already running")
)

// APIError describes a failure response from the game server.  The status
// code is the HTTP status the server replied with and the message is the
// error text from the response body when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

// Error satisfies the error interface and prints human-readable errors.
func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}
