// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ErrNotConnected is returned by Emit when no connection is open.
var ErrNotConnected = errors.New("transport: not connected")

// ErrHandshakeRejected is returned by Connect when the server refuses the
// handshake, typically because the access token is invalid.
var ErrHandshakeRejected = errors.New("transport: handshake rejected")

// WebSocketConfig configures a websocket transport.
type WebSocketConfig struct {
	// URL is the ws:// or wss:// endpoint.
	URL string
	// HandshakeTimeout bounds the dial. Defaults to 10s.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds each outbound frame. Defaults to 5s.
	WriteTimeout time.Duration
	// PingInterval between keepalive pings. Defaults to 20s.
	PingInterval time.Duration
	// PongTimeout is how long to wait for traffic before declaring the
	// connection dead. Defaults to 2×PingInterval.
	PongTimeout time.Duration
	// MaxMessageSize caps inbound frames. Defaults to 1 MiB.
	MaxMessageSize int64
}

func (c WebSocketConfig) withDefaults() WebSocketConfig {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 20 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 2 * c.PingInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 1 << 20
	}
	return c
}

// WebSocket is the gorilla/websocket implementation of Transport. Each
// instance handles a single connection; the connection manager creates a
// fresh one per attempt via a Factory.
type WebSocket struct {
	cfg WebSocketConfig
	id  string
	log *logrus.Entry

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closing   bool

	writeMu sync.Mutex

	handlers struct {
		open    OpenHandler
		message MessageHandler
		close   CloseHandler
		err     ErrorHandler
	}
	closeOnce sync.Once
}

// NewWebSocket creates an unconnected websocket transport.
func NewWebSocket(cfg WebSocketConfig) *WebSocket {
	id := uuid.NewString()
	return &WebSocket{
		cfg: cfg.withDefaults(),
		id:  id,
		log: logrus.WithField("conn", id),
	}
}

// ID returns the per-connection identifier.
func (w *WebSocket) ID() string { return w.id }

// OnOpen registers the open handler.
func (w *WebSocket) OnOpen(h OpenHandler) { w.handlers.open = h }

// OnMessage registers the inbound event handler.
func (w *WebSocket) OnMessage(h MessageHandler) { w.handlers.message = h }

// OnClose registers the close handler.
func (w *WebSocket) OnClose(h CloseHandler) { w.handlers.close = h }

// OnError registers the transport error handler.
func (w *WebSocket) OnError(h ErrorHandler) { w.handlers.err = h }

// Connect dials the endpoint with the access token as a bearer header. The
// server rejecting the handshake surfaces here, not as a later event.
func (w *WebSocket) Connect(ctx context.Context, token string) error {
	dialer := websocket.Dialer{HandshakeTimeout: w.cfg.HandshakeTimeout}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := dialer.DialContext(ctx, w.cfg.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("%w: status %d", ErrHandshakeRejected, resp.StatusCode)
		}
		return fmt.Errorf("transport: dial %s: %w", w.cfg.URL, err)
	}

	conn.SetReadLimit(w.cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(w.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(w.cfg.PongTimeout))
	})

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	go w.readLoop(conn)
	go w.pingLoop(conn)

	w.log.Debugf("transport: connected to %s", w.cfg.URL)
	if w.handlers.open != nil {
		w.handlers.open()
	}
	return nil
}

// Connected reports whether the connection is open.
func (w *WebSocket) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// Emit sends one event envelope to the server.
func (w *WebSocket) Emit(event string, payload any) error {
	w.mu.Lock()
	conn := w.conn
	connected := w.connected
	w.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("transport: marshal %s payload: %w", event, err)
		}
		env.Data = data
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
	if err := conn.WriteJSON(env); err != nil {
		if w.handlers.err != nil {
			w.handlers.err(err)
		}
		return fmt.Errorf("transport: write %s: %w", event, err)
	}
	return nil
}

// Close shuts the connection down client-side.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	conn := w.conn
	w.closing = true
	w.connected = false
	w.mu.Unlock()

	if conn != nil {
		w.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing"))
		w.writeMu.Unlock()
		conn.Close()
	}

	w.fireClose(CloseNormal, nil)
	return nil
}

func (w *WebSocket) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			closing := w.closing
			w.connected = false
			w.mu.Unlock()

			if closing {
				w.fireClose(CloseNormal, nil)
				return
			}
			w.fireClose(classifyReadError(err), err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			w.log.Warnf("transport: dropping malformed frame: %v", err)
			continue
		}
		if env.Event == "" {
			w.log.Warn("transport: dropping frame without event name")
			continue
		}
		if w.handlers.message != nil {
			w.handlers.message(env.Event, env.Data)
		}
	}
}

func (w *WebSocket) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(w.cfg.PingInterval)
	defer ticker.Stop()

	for range ticker.C {
		w.mu.Lock()
		alive := w.connected && w.conn == conn
		w.mu.Unlock()
		if !alive {
			return
		}

		w.writeMu.Lock()
		err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.cfg.WriteTimeout))
		w.writeMu.Unlock()
		if err != nil {
			w.log.Warnf("transport: keepalive ping failed: %v", err)
			conn.Close() // the read loop surfaces the failure
			return
		}
	}
}

func (w *WebSocket) fireClose(reason CloseReason, err error) {
	w.closeOnce.Do(func() {
		w.log.Debugf("transport: closed (%s)", reason)
		if w.handlers.close != nil {
			w.handlers.close(reason, err)
		}
	})
}

func classifyReadError(err error) CloseReason {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseServiceRestart,
		websocket.CloseTryAgainLater) {
		return CloseServerShutdown
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CloseTimeout
	}
	return CloseError
}
