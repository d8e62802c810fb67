// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package backoff

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arenalink/arena-go-sdk/pkg/netmon"
)

func TestScheduler_DelayWithinJitterBand(t *testing.T) {
	cfg := Config{
		MaxAttempts:  8,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     200 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       0.5,
	}

	type sample struct {
		attempt int
		delay   time.Duration
	}
	var samples []sample

	s := NewScheduler(cfg, nil, Callbacks{
		Reconnect: func() {},
		Scheduled: func(attempt int, delay time.Duration) {
			samples = append(samples, sample{attempt, delay})
		},
	})

	for i := 0; i < cfg.MaxAttempts; i++ {
		s.ScheduleReconnect()
		s.Cancel() // disarm without waiting; counter is preserved
	}

	if len(samples) != cfg.MaxAttempts {
		t.Fatalf("got %d scheduled attempts, expected %d", len(samples), cfg.MaxAttempts)
	}

	for _, smp := range samples {
		base := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(smp.attempt-1))
		if base > float64(cfg.MaxDelay) {
			base = float64(cfg.MaxDelay)
		}
		lo := base * (1 - cfg.Jitter)
		hi := base * (1 + cfg.Jitter)
		if float64(smp.delay) < lo || float64(smp.delay) > hi {
			t.Errorf("attempt %d: delay %v outside [%v, %v]",
				smp.attempt, smp.delay, time.Duration(lo), time.Duration(hi))
		}
	}
}

func TestScheduler_MaxAttemptsTerminal(t *testing.T) {
	cfg := Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2.0, Jitter: 0.1}

	var gaveUp int
	s := NewScheduler(cfg, nil, Callbacks{
		Reconnect: func() {},
		GiveUp:    func() { gaveUp++ },
	})

	s.ScheduleReconnect()
	s.Cancel()
	s.ScheduleReconnect()
	s.Cancel()

	// Budget is spent: no timer may be armed, GiveUp must fire every time.
	s.ScheduleReconnect()
	s.ScheduleReconnect()

	if gaveUp != 2 {
		t.Errorf("GiveUp fired %d times, expected 2", gaveUp)
	}
	if s.Pending() {
		t.Error("no timer may be armed after the budget is spent")
	}
	if s.Attempts() != 2 {
		t.Errorf("Attempts() = %d, expected 2", s.Attempts())
	}
}

func TestScheduler_TimerFiresReconnect(t *testing.T) {
	cfg := Config{MaxAttempts: 3, InitialDelay: 5 * time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 2.0, Jitter: 0.1}

	fired := make(chan struct{}, 1)
	s := NewScheduler(cfg, nil, Callbacks{
		Reconnect: func() { fired <- struct{}{} },
	})

	s.ScheduleReconnect()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("reconnect callback never fired")
	}
	if s.Pending() {
		t.Error("timer should be cleared after firing")
	}
}

func TestScheduler_OfflineAttachesSingleListener(t *testing.T) {
	mon := netmon.NewManualMonitor(false)
	cfg := Config{MaxAttempts: 3, InitialDelay: 5 * time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 2.0, Jitter: 0.1}

	var scheduled int32
	s := NewScheduler(cfg, mon, Callbacks{
		Reconnect: func() {},
		Scheduled: func(int, time.Duration) { atomic.AddInt32(&scheduled, 1) },
	})

	s.ScheduleReconnect()

	if atomic.LoadInt32(&scheduled) != 0 {
		t.Fatal("no timer may be armed while offline")
	}
	if n := mon.SubscriberCount(); n != 1 {
		t.Fatalf("SubscriberCount = %d while waiting, expected 1", n)
	}

	// Scheduling again while waiting must replace the listener, not stack.
	s.ScheduleReconnect()
	if n := mon.SubscriberCount(); n != 1 {
		t.Fatalf("SubscriberCount = %d after rescheduling, expected 1", n)
	}

	mon.SetOnline(true)

	if got := atomic.LoadInt32(&scheduled); got != 1 {
		t.Errorf("online signal triggered %d scheduling attempts, expected 1", got)
	}
	if n := mon.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d after online, expected 0 (listener detached)", n)
	}

	s.Cancel()
}

func TestScheduler_ResetClearsEverything(t *testing.T) {
	mon := netmon.NewManualMonitor(false)
	cfg := Config{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond, MaxDelay: 100 * time.Millisecond, Multiplier: 2.0, Jitter: 0.1}

	s := NewScheduler(cfg, mon, Callbacks{Reconnect: func() {}})

	// Outstanding network listener.
	s.ScheduleReconnect()
	s.Reset()

	if s.Attempts() != 0 {
		t.Errorf("Attempts() = %d after Reset, expected 0", s.Attempts())
	}
	if s.Pending() {
		t.Error("Reset must leave no armed timer or listener")
	}
	if n := mon.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d after Reset, expected 0", n)
	}

	// Outstanding timer.
	mon.SetOnline(true)
	s.ScheduleReconnect()
	if s.Attempts() != 1 {
		t.Fatalf("Attempts() = %d, expected 1", s.Attempts())
	}
	s.Reset()
	if s.Attempts() != 0 || s.Pending() {
		t.Error("Reset after an armed timer must zero the counter and disarm it")
	}
}

func TestScheduler_CancelKeepsCounter(t *testing.T) {
	cfg := Config{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond, MaxDelay: 100 * time.Millisecond, Multiplier: 2.0, Jitter: 0.1}

	s := NewScheduler(cfg, nil, Callbacks{Reconnect: func() {}})

	s.ScheduleReconnect()
	s.Cancel()

	if s.Attempts() != 1 {
		t.Errorf("Attempts() = %d after Cancel, expected 1", s.Attempts())
	}
	if s.Pending() {
		t.Error("Cancel must disarm the timer")
	}

	// Safe with nothing outstanding.
	s.Cancel()
	s.Reset()
}

func TestScheduler_RescheduleReplacesTimer(t *testing.T) {
	cfg := Config{MaxAttempts: 5, InitialDelay: 20 * time.Millisecond, MaxDelay: 40 * time.Millisecond, Multiplier: 1.0, Jitter: 0}

	var fired int32
	s := NewScheduler(cfg, nil, Callbacks{
		Reconnect: func() { atomic.AddInt32(&fired, 1) },
	})

	s.ScheduleReconnect()
	s.ScheduleReconnect()

	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("reconnect fired %d times, expected 1 (second schedule replaces the first)", got)
	}
}
