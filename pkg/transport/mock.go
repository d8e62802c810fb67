// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package transport

import (
	"context"
	"encoding/json"
	"sync"
)

// Mock is an in-memory Transport for tests. It records emitted events and
// lets tests drive the connection lifecycle with the Simulate helpers.
type Mock struct {
	mu        sync.Mutex
	connected bool
	token     string
	emitted   []Envelope

	// ConnectErr, when set, is returned by Connect instead of opening.
	ConnectErr error
	// EmitErr, when set, is returned by Emit.
	EmitErr error
	// OpenOnConnect fires the open handler from Connect, like the real
	// transport does. Defaults to true via NewMock.
	OpenOnConnect bool

	handlers struct {
		open    OpenHandler
		message MessageHandler
		close   CloseHandler
		err     ErrorHandler
	}
}

// NewMock creates a mock transport that opens successfully.
func NewMock() *Mock {
	return &Mock{OpenOnConnect: true}
}

// Connect records the token and, unless configured otherwise, fires open.
func (m *Mock) Connect(_ context.Context, token string) error {
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.mu.Lock()
	m.connected = true
	m.token = token
	m.mu.Unlock()

	if m.OpenOnConnect {
		m.SimulateOpen()
	}
	return nil
}

// Close marks the transport closed and fires the close handler with
// CloseNormal.
func (m *Mock) Close() error {
	m.mu.Lock()
	wasConnected := m.connected
	m.connected = false
	m.mu.Unlock()

	if wasConnected && m.handlers.close != nil {
		m.handlers.close(CloseNormal, nil)
	}
	return nil
}

// Emit records the event.
func (m *Mock) Emit(event string, payload any) error {
	if m.EmitErr != nil {
		return m.EmitErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}

	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		env.Data = data
	}
	m.emitted = append(m.emitted, env)
	return nil
}

// Connected reports the simulated connection state.
func (m *Mock) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// OnOpen registers a handler.
func (m *Mock) OnOpen(h OpenHandler) { m.handlers.open = h }

// OnMessage registers a handler.
func (m *Mock) OnMessage(h MessageHandler) { m.handlers.message = h }

// OnClose registers a handler.
func (m *Mock) OnClose(h CloseHandler) { m.handlers.close = h }

// OnError registers a handler.
func (m *Mock) OnError(h ErrorHandler) { m.handlers.err = h }

// --- Test helpers ---

// Token returns the token passed to Connect.
func (m *Mock) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// SimulateOpen fires the open handler.
func (m *Mock) SimulateOpen() {
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	if m.handlers.open != nil {
		m.handlers.open()
	}
}

// SimulateMessage delivers a server event. The payload is JSON-marshalled.
func (m *Mock) SimulateMessage(event string, payload any) {
	var data json.RawMessage
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	if m.handlers.message != nil {
		m.handlers.message(event, data)
	}
}

// SimulateClose marks the transport closed and fires the close handler with
// the given reason.
func (m *Mock) SimulateClose(reason CloseReason, err error) {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	if m.handlers.close != nil {
		m.handlers.close(reason, err)
	}
}

// SimulateError fires the error handler.
func (m *Mock) SimulateError(err error) {
	if m.handlers.err != nil {
		m.handlers.err(err)
	}
}

// Emitted returns a copy of all recorded envelopes.
func (m *Mock) Emitted() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Envelope{}, m.emitted...)
}

// EmittedEvents returns the event names of all recorded envelopes, in order.
func (m *Mock) EmittedEvents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.emitted))
	for i, env := range m.emitted {
		names[i] = env.Event
	}
	return names
}

// Clear drops the recorded envelopes.
func (m *Mock) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitted = m.emitted[:0]
}
