// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package backoff schedules reconnection attempts with exponential delay,
// jitter, an attempt budget, and deferral while the network is offline.
package backoff

import (
	"sync"
	"time"

	expbackoff "github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/arenalink/arena-go-sdk/pkg/netmon"
)

// Config holds the retry timing parameters. Delay for attempt n is
// min(InitialDelay * Multiplier^(n-1), MaxDelay), perturbed by a uniform
// random offset within ±Jitter of the computed value.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
}

// DefaultConfig returns the stock retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.25,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.Multiplier < 1 {
		c.Multiplier = d.Multiplier
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		c.Jitter = d.Jitter
	}
	return c
}

// Callbacks are the scheduler's outbound notifications. All fields are
// optional except Reconnect.
type Callbacks struct {
	// Reconnect runs when the armed timer fires.
	Reconnect func()
	// Scheduled runs after a timer has been armed for the given attempt.
	Scheduled func(attempt int, delay time.Duration)
	// GiveUp runs when ScheduleReconnect is called with the budget spent.
	GiveUp func()
	// Waiting runs when scheduling is deferred until the network returns.
	Waiting func()
}

// Scheduler owns the reconnection timing state machine. At most one timer or
// one network listener is outstanding at any time: scheduling while one is
// pending replaces it, never stacks.
type Scheduler struct {
	mu        sync.Mutex
	cfg       Config
	exp       *expbackoff.ExponentialBackOff
	cb        Callbacks
	monitor   netmon.Monitor
	attempts  int
	timer     *time.Timer
	cancelNet func()
}

// NewScheduler creates a scheduler. The monitor may be nil, in which case
// the network is assumed reachable.
func NewScheduler(cfg Config, monitor netmon.Monitor, cb Callbacks) *Scheduler {
	cfg = cfg.withDefaults()

	exp := expbackoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialDelay
	exp.MaxInterval = cfg.MaxDelay
	exp.Multiplier = cfg.Multiplier
	exp.RandomizationFactor = cfg.Jitter
	exp.MaxElapsedTime = 0 // the attempt budget is ours, not time-based
	exp.Reset()

	return &Scheduler{
		cfg:     cfg,
		exp:     exp,
		cb:      cb,
		monitor: monitor,
	}
}

// Config returns the effective (defaulted) configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Attempts returns the current attempt counter.
func (s *Scheduler) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// ScheduleReconnect arms the next reconnection attempt. It is terminal once
// the attempt budget is spent: the caller must Reset before scheduling again.
func (s *Scheduler) ScheduleReconnect() {
	s.mu.Lock()
	s.clearPendingLocked()

	if s.attempts >= s.cfg.MaxAttempts {
		s.mu.Unlock()
		logrus.Warnf("backoff: max reconnection attempts reached (%d)", s.cfg.MaxAttempts)
		if s.cb.GiveUp != nil {
			s.cb.GiveUp()
		}
		return
	}

	if s.monitor != nil && !s.monitor.Online() {
		var once sync.Once
		s.cancelNet = s.monitor.Subscribe(func(online bool) {
			if !online {
				return
			}
			once.Do(func() {
				s.mu.Lock()
				if s.cancelNet != nil {
					s.cancelNet()
					s.cancelNet = nil
				}
				s.mu.Unlock()
				s.ScheduleReconnect()
			})
		})
		s.mu.Unlock()
		logrus.Info("backoff: network offline, waiting for connectivity before reconnecting")
		if s.cb.Waiting != nil {
			s.cb.Waiting()
		}
		return
	}

	s.attempts++
	attempt := s.attempts
	delay := s.exp.NextBackOff()
	if delay == expbackoff.Stop {
		delay = s.cfg.MaxDelay
	}
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		if s.cb.Reconnect != nil {
			s.cb.Reconnect()
		}
	})
	s.mu.Unlock()

	logrus.Infof("backoff: reconnecting, attempt %d/%d in %v", attempt, s.cfg.MaxAttempts, delay)
	if s.cb.Scheduled != nil {
		s.cb.Scheduled(attempt, delay)
	}
}

// Reset cancels any armed timer or network listener and zeroes the attempt
// counter. Call it exactly once per successful (re)connection.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPendingLocked()
	s.attempts = 0
	s.exp.Reset()
}

// Cancel clears any armed timer or network listener without touching the
// attempt counter. Used on explicit disconnect.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPendingLocked()
}

// Pending reports whether a timer or network listener is outstanding.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil || s.cancelNet != nil
}

func (s *Scheduler) clearPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelNet != nil {
		s.cancelNet()
		s.cancelNet = nil
	}
}
