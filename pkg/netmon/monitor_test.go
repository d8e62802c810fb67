// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package netmon

import (
	"net"
	"testing"
	"time"
)

func TestManualMonitor_InitialState(t *testing.T) {
	if !NewManualMonitor(true).Online() {
		t.Error("monitor created online should report online")
	}
	if NewManualMonitor(false).Online() {
		t.Error("monitor created offline should report offline")
	}
}

func TestManualMonitor_NotifiesOnTransition(t *testing.T) {
	m := NewManualMonitor(true)

	var got []bool
	m.Subscribe(func(online bool) { got = append(got, online) })

	m.SetOnline(false)
	m.SetOnline(false) // no transition, no notification
	m.SetOnline(true)

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("notifications = %v, expected [false true]", got)
	}
}

func TestManualMonitor_Cancel(t *testing.T) {
	m := NewManualMonitor(true)

	count := 0
	cancel := m.Subscribe(func(bool) { count++ })
	cancel()
	cancel() // idempotent

	m.SetOnline(false)
	if count != 0 {
		t.Errorf("handler fired %d times after cancel, expected 0", count)
	}
	if n := m.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, expected 0", n)
	}
}

func TestProbeMonitor_DetectsListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	p := NewProbeMonitor(ProbeConfig{
		Addr:     ln.Addr().String(),
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
	})
	p.Start()
	defer p.Stop()

	deadline := time.After(time.Second)
	for !p.Online() {
		select {
		case <-deadline:
			t.Fatal("probe monitor never reported online against a live listener")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestProbeMonitor_DetectsOutage(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	p := NewProbeMonitor(ProbeConfig{
		Addr:     addr,
		Interval: 10 * time.Millisecond,
		Timeout:  100 * time.Millisecond,
	})
	p.Start()
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for p.Online() {
		select {
		case <-deadline:
			t.Fatal("probe monitor never reported offline against a dead address")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
