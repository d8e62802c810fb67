// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package events provides the synchronous publish/subscribe bus used both as
// the SDK's public notification surface and internally to decouple the
// connection layer from consumers.
package events

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrWaitTimeout is returned by WaitFor when the event does not arrive in time.
var ErrWaitTimeout = errors.New("events: timed out waiting for event")

// ErrBusClosed is returned by WaitFor on a closed bus.
var ErrBusClosed = errors.New("events: bus is closed")

// Handler receives the payload published with an event.
type Handler func(payload any)

type listener struct {
	id   uint64
	fn   Handler
	once bool
}

// Bus is a synchronous event bus. Handlers for a given event fire in
// subscription order within a single dispatch. Emit snapshots the listener
// list first, so handlers that subscribe or unsubscribe during emission do
// not affect the in-progress dispatch; once-listeners are removed after the
// dispatch completes, never mid-dispatch.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[string][]*listener
	closed   bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]*listener)}
}

// On registers a handler for an event and returns its unsubscribe function.
// Unsubscribing is idempotent.
func (b *Bus) On(event string, fn Handler) (off func()) {
	return b.subscribe(event, fn, false)
}

// Once registers a handler that is removed after its first invocation.
func (b *Bus) Once(event string, fn Handler) (off func()) {
	return b.subscribe(event, fn, true)
}

func (b *Bus) subscribe(event string, fn Handler, once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || fn == nil {
		return func() {}
	}
	b.nextID++
	l := &listener{id: b.nextID, fn: fn, once: once}
	b.handlers[event] = append(b.handlers[event], l)

	id := l.id
	return func() { b.remove(event, id) }
}

// Emit dispatches an event to all currently registered handlers,
// synchronously and in subscription order. A panicking handler is recovered
// and logged; the remaining handlers still run.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	snapshot := make([]*listener, len(b.handlers[event]))
	copy(snapshot, b.handlers[event])
	b.mu.Unlock()

	for _, l := range snapshot {
		invoke(event, l.fn, payload)
	}

	// Once-listeners leave the registry only after the full dispatch.
	b.mu.Lock()
	for _, l := range snapshot {
		if l.once {
			b.removeLocked(event, l.id)
		}
	}
	b.mu.Unlock()
}

func invoke(event string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("event bus: handler for %q panicked: %v", event, r)
		}
	}()
	fn(payload)
}

// WaitFor blocks until the next emission of event and returns its payload.
// A non-positive timeout waits indefinitely. The internal subscription is
// removed on both success and timeout.
func (b *Bus) WaitFor(event string, timeout time.Duration) (any, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}
	b.mu.Unlock()

	ch := make(chan any, 1)
	off := b.Once(event, func(payload any) {
		select {
		case ch <- payload:
		default:
		}
	})

	if timeout <= 0 {
		return <-ch, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case payload := <-ch:
		return payload, nil
	case <-timer.C:
		off()
		return nil, ErrWaitTimeout
	}
}

// Off removes every handler registered for an event. Individual handlers
// are removed with the function returned by On or Once.
func (b *Bus) Off(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, event)
}

// ListenerCount returns the number of handlers registered for an event.
func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}

// Close drops all listeners and rejects further subscriptions and emissions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string][]*listener)
}

func (b *Bus) remove(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(event, id)
}

func (b *Bus) removeLocked(event string, id uint64) {
	ls := b.handlers[event]
	for i, l := range ls {
		if l.id == id {
			b.handlers[event] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}
