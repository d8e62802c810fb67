// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package netmon reports network connectivity to the reconnection machinery.
package netmon

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Monitor exposes the current connectivity state and change notifications.
type Monitor interface {
	// Online reports whether the network is currently believed reachable.
	Online() bool

	// Subscribe registers a handler for connectivity changes and returns its
	// cancel function. Handlers are invoked outside any monitor lock.
	Subscribe(fn func(online bool)) (cancel func())
}

// ManualMonitor is a Monitor driven by the host application (or by tests).
// Game engines and mobile shells usually already know their connectivity;
// they push it here via SetOnline.
type ManualMonitor struct {
	mu     sync.Mutex
	online bool
	nextID uint64
	subs   map[uint64]func(online bool)
}

// NewManualMonitor creates a manually driven monitor with the given initial
// state.
func NewManualMonitor(online bool) *ManualMonitor {
	return &ManualMonitor{
		online: online,
		subs:   make(map[uint64]func(online bool)),
	}
}

// Online reports the last pushed state.
func (m *ManualMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline pushes a new connectivity state. Subscribers are notified only
// on transitions.
func (m *ManualMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	snapshot := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		snapshot = append(snapshot, fn)
	}
	m.mu.Unlock()

	for _, fn := range snapshot {
		fn(online)
	}
}

// Subscribe registers a connectivity-change handler.
func (m *ManualMonitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// SubscriberCount returns the number of registered handlers.
func (m *ManualMonitor) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// ProbeMonitor detects connectivity by periodically dialing a TCP address,
// typically the backend host. It feeds an embedded ManualMonitor, so
// Online/Subscribe behave identically.
type ProbeMonitor struct {
	*ManualMonitor

	addr     string
	interval time.Duration
	timeout  time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// ProbeConfig configures a ProbeMonitor.
type ProbeConfig struct {
	// Addr is the host:port to dial.
	Addr string
	// Interval between probes. Defaults to 10s.
	Interval time.Duration
	// Timeout for a single probe dial. Defaults to 3s.
	Timeout time.Duration
}

// NewProbeMonitor creates a probe-based monitor. It starts optimistic
// (online) until the first probe says otherwise. Call Start to begin probing
// and Stop to release the probe goroutine.
func NewProbeMonitor(cfg ProbeConfig) *ProbeMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &ProbeMonitor{
		ManualMonitor: NewManualMonitor(true),
		addr:          cfg.Addr,
		interval:      cfg.Interval,
		timeout:       cfg.Timeout,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start launches the probe loop.
func (p *ProbeMonitor) Start() {
	go p.loop()
}

// Stop terminates the probe loop. Safe to call more than once.
func (p *ProbeMonitor) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *ProbeMonitor) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.probe()
	for {
		select {
		case <-ticker.C:
			p.probe()
		case <-p.stop:
			return
		}
	}
}

func (p *ProbeMonitor) probe() {
	conn, err := net.DialTimeout("tcp", p.addr, p.timeout)
	if err != nil {
		if p.Online() {
			logrus.Warnf("network monitor: probe to %s failed, going offline: %v", p.addr, err)
		}
		p.SetOnline(false)
		return
	}
	conn.Close()
	if !p.Online() {
		logrus.Infof("network monitor: probe to %s succeeded, back online", p.addr)
	}
	p.SetOnline(true)
}
