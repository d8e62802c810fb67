// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package transport provides the persistent bidirectional connection to the
// backend behind an interface, so the websocket implementation can be
// swapped for a mock in tests.
package transport

import (
	"context"
	"encoding/json"
)

// CloseReason classifies why a transport closed.
type CloseReason int

const (
	// CloseNormal is a client-initiated close. Never retried.
	CloseNormal CloseReason = iota
	// CloseServerShutdown is a server-initiated close.
	CloseServerShutdown
	// CloseError is a transport-level failure.
	CloseError
	// CloseTimeout is a keepalive or read deadline expiry.
	CloseTimeout
)

// String returns the wire-friendly name of the reason.
func (r CloseReason) String() string {
	switch r {
	case CloseNormal:
		return "client_close"
	case CloseServerShutdown:
		return "server_shutdown"
	case CloseError:
		return "transport_error"
	case CloseTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Reconnectable reports whether a close reason is eligible for automatic
// reconnection. Client-initiated closes are deliberately excluded.
func Reconnectable(r CloseReason) bool {
	switch r {
	case CloseServerShutdown, CloseError, CloseTimeout:
		return true
	default:
		return false
	}
}

// Envelope is the wire format: one JSON object per frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MessageHandler is called for each inbound server event.
type MessageHandler func(event string, data json.RawMessage)

// OpenHandler is called when the connection is established.
type OpenHandler func()

// CloseHandler is called exactly once when the connection ends.
type CloseHandler func(reason CloseReason, err error)

// ErrorHandler is called for transport-level errors that are distinct from
// a close (for example a failed write).
type ErrorHandler func(err error)

// Transport is a single-use bidirectional connection. Register handlers
// before calling Connect.
type Transport interface {
	// Connect opens the connection, authenticating with the access token.
	Connect(ctx context.Context, token string) error

	// Close shuts the connection down. The close handler fires with
	// CloseNormal.
	Close() error

	// Emit sends a client event to the server.
	Emit(event string, payload any) error

	// Connected reports whether the connection is currently open.
	Connected() bool

	OnOpen(OpenHandler)
	OnMessage(MessageHandler)
	OnClose(CloseHandler)
	OnError(ErrorHandler)
}

// Factory produces a fresh Transport for each connection attempt.
type Factory func() Transport
