// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package realtime owns the socket connection lifecycle: the status state
// machine, transparent recovery from drops, and the session state that must
// survive reconnects. Connection failures never propagate as errors to the
// consumer once connected; they become published notifications and state
// transitions, because realtime connectivity is advisory.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arenalink/arena-go-sdk/pkg/auth"
	"github.com/arenalink/arena-go-sdk/pkg/backoff"
	"github.com/arenalink/arena-go-sdk/pkg/events"
	"github.com/arenalink/arena-go-sdk/pkg/metrics"
	"github.com/arenalink/arena-go-sdk/pkg/netmon"
	"github.com/arenalink/arena-go-sdk/pkg/transport"
)

// ErrNoCredential is returned by Connect when the credential store is empty.
var ErrNoCredential = errors.New("realtime: no credential available")

// ErrOffline is returned by Connect while the network monitor reports no
// connectivity.
var ErrOffline = errors.New("realtime: network is offline")

// ErrDestroyed is returned by Connect after Destroy.
var ErrDestroyed = errors.New("realtime: manager destroyed")

// Config configures the connection manager.
type Config struct {
	// AutoReconnect enables retry scheduling after reconnectable drops.
	AutoReconnect bool
	// Backoff is the retry timing policy.
	Backoff backoff.Config
}

// SubscriptionHandler receives the raw payload of a subscribed server event.
type SubscriptionHandler func(data json.RawMessage)

type subscription struct {
	id uint64
	h  SubscriptionHandler
}

type pendingSub struct {
	id    uint64
	event string
	h     SubscriptionHandler
}

// Manager owns the socket, the connection state machine, and the session
// state. Construct one per client and pass it to consumers; lifecycle is
// caller-controlled via Connect, Disconnect and Destroy.
type Manager struct {
	cfg       Config
	creds     auth.Store
	bus       *events.Bus
	monitor   netmon.Monitor
	factory   transport.Factory
	scheduler *backoff.Scheduler
	metrics   *metrics.Collector
	log       *logrus.Entry

	mu              sync.Mutex
	status          Status
	tr              transport.Transport
	gen             int // transport generation; stale callbacks are ignored
	replayedGen     int
	session         *Session
	lastErr         error
	lastCloseReason transport.CloseReason
	reconnectArmed  bool
	destroyed       bool
	subSeq          uint64
	subs            map[string][]subscription
	pendingSubs     []pendingSub
	monCancel       func()
}

// NewManager creates a connection manager. The monitor may be nil, in which
// case the network is assumed reachable. The factory produces a fresh
// transport for every connection attempt.
func NewManager(cfg Config, creds auth.Store, bus *events.Bus, monitor netmon.Monitor, factory transport.Factory) *Manager {
	m := &Manager{
		cfg:     cfg,
		creds:   creds,
		bus:     bus,
		monitor: monitor,
		factory: factory,
		session: newSession(),
		subs:    make(map[string][]subscription),
		log:     logrus.WithField("component", "realtime"),
	}

	m.scheduler = backoff.NewScheduler(cfg.Backoff, monitor, backoff.Callbacks{
		Reconnect: func() { m.connect(context.Background(), true) },
		Scheduled: m.handleRetryScheduled,
		GiveUp:    m.handleRetriesExhausted,
	})

	if monitor != nil {
		m.monCancel = monitor.Subscribe(m.handleNetwork)
	}
	return m
}

// SetMetrics attaches an optional metrics collector.
func (m *Manager) SetMetrics(c *metrics.Collector) { m.metrics = c }

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Session returns a deep copy of the current session state.
func (m *Manager) Session() SessionSnapshot {
	return m.session.Snapshot()
}

// LastError returns the most recent connection error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// LastCloseReason returns why the previous connection ended.
func (m *Manager) LastCloseReason() transport.CloseReason {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCloseReason
}

// Connect establishes the socket. It is a no-op when already connected or
// connecting, and fails fast without opening a transport when no credential
// is stored or the network is offline.
func (m *Manager) Connect(ctx context.Context) error {
	return m.connect(ctx, false)
}

func (m *Manager) connect(ctx context.Context, retry bool) error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}
	if m.status == StatusConnected || m.status == StatusConnecting {
		m.mu.Unlock()
		m.log.Debug("connect: already connected or connecting")
		return nil
	}
	// A scheduled retry races with explicit disconnects and offline
	// transitions; it only proceeds while the manager still wants it.
	if retry && (!m.reconnectArmed || m.status != StatusReconnecting) {
		m.mu.Unlock()
		return nil
	}

	cred, ok := m.creds.Get()
	if !ok {
		m.lastErr = ErrNoCredential
		m.mu.Unlock()
		m.bus.Emit(events.Error, ErrNoCredential)
		return ErrNoCredential
	}
	if !retry && m.monitor != nil && !m.monitor.Online() {
		m.lastErr = ErrOffline
		m.mu.Unlock()
		m.bus.Emit(events.Error, ErrOffline)
		return ErrOffline
	}

	if !retry {
		// A fresh Connect supersedes any pending scheduled retry.
		m.scheduler.Cancel()
		m.setStatusLocked(StatusConnecting)
	}
	m.reconnectArmed = true
	m.gen++
	gen := m.gen
	t := m.factory()
	m.tr = t
	t.OnOpen(func() { m.handleOpen(gen) })
	t.OnMessage(func(event string, data json.RawMessage) { m.handleMessage(gen, event, data) })
	t.OnClose(func(reason transport.CloseReason, err error) { m.handleClose(gen, reason, err) })
	t.OnError(func(err error) { m.handleError(gen, err) })
	m.mu.Unlock()

	if !retry {
		m.bus.Emit(events.Connecting, nil)
	}

	if err := t.Connect(ctx, cred.AccessToken); err != nil {
		m.log.Warnf("connection attempt failed: %v", err)
		m.mu.Lock()
		if gen != m.gen || m.destroyed {
			m.mu.Unlock()
			return err
		}
		m.lastErr = err
		m.tr = nil
		canRetry := m.cfg.AutoReconnect && m.reconnectArmed && m.creds.IsAuthenticated()
		if canRetry {
			m.setStatusLocked(StatusReconnecting)
		} else {
			m.setStatusLocked(StatusDisconnected)
		}
		m.mu.Unlock()

		m.bus.Emit(events.Error, err)
		if canRetry {
			m.scheduler.ScheduleReconnect()
		}
		return err
	}
	return nil
}

// Disconnect is the explicit shutdown path: it cancels any scheduled retry,
// disarms auto-reconnect, tears down the transport, and resets the session.
// This is the only path that clears session state.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.scheduler.Cancel()
	m.reconnectArmed = false
	m.gen++ // stale-ify every outstanding transport callback
	t := m.tr
	m.tr = nil
	m.session.reset()
	wasDisconnected := m.status == StatusDisconnected
	m.setStatusLocked(StatusDisconnected)
	m.mu.Unlock()

	if t != nil {
		t.Close()
	}
	if !wasDisconnected {
		m.bus.Emit(events.Disconnected, DisconnectedEvent{Reason: transport.CloseNormal.String()})
	}
	m.emitStateChanged()
}

// Destroy disconnects and discards all subscriptions, including pending
// listener registrations that never attached to a transport.
func (m *Manager) Destroy() {
	m.Disconnect()

	m.mu.Lock()
	m.destroyed = true
	m.subs = make(map[string][]subscription)
	m.pendingSubs = nil
	if m.monCancel != nil {
		m.monCancel()
		m.monCancel = nil
	}
	m.mu.Unlock()
}

// Subscribe registers a handler for a raw server event (room, chat and game
// variants share this dispatch primitive). Registrations made before a
// transport exists are held and attached the moment a connection succeeds;
// Destroy discards them.
func (m *Manager) Subscribe(event string, h SubscriptionHandler) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed || h == nil {
		return func() {}
	}
	m.subSeq++
	id := m.subSeq
	if m.tr != nil {
		m.subs[event] = append(m.subs[event], subscription{id: id, h: h})
	} else {
		m.pendingSubs = append(m.pendingSubs, pendingSub{id: id, event: event, h: h})
	}
	return func() { m.unsubscribe(event, id) }
}

func (m *Manager) unsubscribe(event string, id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[event]
	for i, s := range subs {
		if s.id == id {
			m.subs[event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
	for i, p := range m.pendingSubs {
		if p.id == id {
			m.pendingSubs = append(m.pendingSubs[:i:i], m.pendingSubs[i+1:]...)
			return
		}
	}
}

// --- outbound intents (best-effort: dropped with a warning when not connected) ---

// JoinLobby enters the global lobby. Membership is remembered and replayed
// after every reconnect.
func (m *Manager) JoinLobby() {
	if m.sendIntent(IntentLobbyJoin, lobbyIntentPayload{}) {
		m.session.setLobby(true)
		m.emitStateChanged()
	}
}

// LeaveLobby leaves the global lobby.
func (m *Manager) LeaveLobby() {
	if m.sendIntent(IntentLobbyLeave, lobbyIntentPayload{}) {
		m.session.setLobby(false)
		m.emitStateChanged()
	}
}

// SubscribeGame subscribes to a game's broadcast room.
func (m *Manager) SubscribeGame(gameID string) {
	m.sendIntent(IntentGameSubscribe, gameIntentPayload{GameID: gameID})
}

// UnsubscribeGame unsubscribes from a game's broadcast room.
func (m *Manager) UnsubscribeGame(gameID string) {
	m.sendIntent(IntentGameUnsubscribe, gameIntentPayload{GameID: gameID})
}

// JoinQueue asks to be queued for a tournament. The session entry is created
// by the server's queue:joined confirmation, not locally.
func (m *Manager) JoinQueue(tournamentID string) {
	m.sendIntent(IntentQueueJoin, queueIntentPayload{TournamentID: tournamentID})
}

// LeaveQueue asks to leave a tournament queue.
func (m *Manager) LeaveQueue(tournamentID string) {
	m.sendIntent(IntentQueueLeave, queueIntentPayload{TournamentID: tournamentID})
}

// JoinMatchRoom joins a match room.
func (m *Manager) JoinMatchRoom(matchID string) {
	m.sendIntent(IntentMatchRoomJoin, matchIntentPayload{MatchID: matchID})
}

// LeaveMatchRoom leaves a match room without abandoning the match.
func (m *Manager) LeaveMatchRoom(matchID string) {
	m.sendIntent(IntentMatchRoomLeave, matchIntentPayload{MatchID: matchID})
}

// SignalReady marks this client ready in the match room.
func (m *Manager) SignalReady(matchID string) {
	m.sendIntent(IntentMatchReady, matchIntentPayload{MatchID: matchID})
}

// LeaveMatch abandons the match.
func (m *Manager) LeaveMatch(matchID string) {
	m.sendIntent(IntentMatchLeave, matchIntentPayload{MatchID: matchID})
}

// AcceptMatch accepts a found match.
func (m *Manager) AcceptMatch(matchID string) {
	m.sendIntent(IntentMatchAccept, matchIntentPayload{MatchID: matchID})
}

// DeclineMatch declines a found match.
func (m *Manager) DeclineMatch(matchID string) {
	m.sendIntent(IntentMatchDecline, matchIntentPayload{MatchID: matchID})
}

// MarkNotificationsRead zeroes the unread counter. Purely local.
func (m *Manager) MarkNotificationsRead() {
	m.session.markRead()
	m.emitStateChanged()
}

func (m *Manager) sendIntent(event string, payload any) bool {
	m.mu.Lock()
	t := m.tr
	connected := m.status == StatusConnected
	status := m.status
	m.mu.Unlock()

	if !connected || t == nil {
		m.log.Warnf("dropping %s intent while %s", event, status)
		return false
	}
	if err := t.Emit(event, payload); err != nil {
		m.log.Warnf("failed to send %s: %v", event, err)
		return false
	}
	return true
}

// --- transport lifecycle ---

func (m *Manager) handleOpen(gen int) {
	m.mu.Lock()
	if gen != m.gen || m.destroyed {
		m.mu.Unlock()
		return
	}
	prevAttempts := m.scheduler.Attempts()
	m.scheduler.Reset()
	m.setStatusLocked(StatusConnected)
	m.lastErr = nil

	// Resolve pending listener registrations against the live transport.
	for _, p := range m.pendingSubs {
		m.subs[p.event] = append(m.subs[p.event], subscription{id: p.id, h: p.h})
	}
	m.pendingSubs = nil

	// Replay at most once per transport generation: a duplicate open event
	// must not duplicate the join intents.
	replay := m.replayedGen != gen
	m.replayedGen = gen
	t := m.tr
	m.mu.Unlock()

	if replay && t != nil {
		if m.session.InLobby() {
			m.log.Info("replaying lobby membership after reconnect")
			if err := t.Emit(IntentLobbyJoin, lobbyIntentPayload{}); err != nil {
				m.log.Warnf("lobby replay failed: %v", err)
			}
		}
		if matchID := m.session.matchID(); matchID != "" {
			m.log.Infof("replaying match room membership for %s after reconnect", matchID)
			if err := t.Emit(IntentMatchRoomJoin, matchIntentPayload{MatchID: matchID}); err != nil {
				m.log.Warnf("match room replay failed: %v", err)
			}
		}
	}

	m.bus.Emit(events.Connected, nil)
	if prevAttempts > 0 {
		m.log.Infof("reconnected after %d attempts", prevAttempts)
		m.bus.Emit(events.Reconnected, ReconnectedEvent{Attempts: prevAttempts})
	}
	m.emitStateChanged()
}

func (m *Manager) handleClose(gen int, reason transport.CloseReason, err error) {
	m.mu.Lock()
	if gen != m.gen || m.destroyed || m.status == StatusOffline {
		m.mu.Unlock()
		return
	}
	m.lastCloseReason = reason
	if err != nil {
		m.lastErr = err
	}
	m.tr = nil

	alreadyRetrying := m.status == StatusReconnecting
	canRetry := !alreadyRetrying &&
		transport.Reconnectable(reason) &&
		m.cfg.AutoReconnect && m.reconnectArmed &&
		m.creds.IsAuthenticated()
	if canRetry {
		m.setStatusLocked(StatusReconnecting)
	} else if !alreadyRetrying {
		m.setStatusLocked(StatusDisconnected)
	}
	m.mu.Unlock()

	m.log.Infof("transport closed (%s)", reason)
	m.bus.Emit(events.Disconnected, DisconnectedEvent{Reason: reason.String()})
	if canRetry {
		m.scheduler.ScheduleReconnect()
	}
}

// handleError covers transport-level errors distinct from a close. Under
// the same conditions as a reconnectable close it hands off to the
// scheduler: an error must not leave the client silently idle while
// credentials remain valid.
func (m *Manager) handleError(gen int, err error) {
	m.mu.Lock()
	if gen != m.gen || m.destroyed || m.status == StatusOffline {
		m.mu.Unlock()
		return
	}
	m.lastErr = err

	canRetry := m.status != StatusReconnecting &&
		m.cfg.AutoReconnect && m.reconnectArmed &&
		m.creds.IsAuthenticated()
	var t transport.Transport
	if canRetry {
		m.gen++ // retire the failed transport's remaining callbacks
		t = m.tr
		m.tr = nil
		m.setStatusLocked(StatusReconnecting)
	}
	m.mu.Unlock()

	m.log.Warnf("transport error: %v", err)
	m.bus.Emit(events.Error, err)
	if canRetry {
		if t != nil {
			t.Close()
		}
		m.scheduler.ScheduleReconnect()
	}
}

func (m *Manager) handleRetryScheduled(attempt int, delay time.Duration) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.setStatusLocked(StatusReconnecting)
	m.mu.Unlock()

	m.log.Infof("reconnect attempt %d scheduled in %s", attempt, delay)
	m.metrics.ReconnectAttempt()
	m.bus.Emit(events.Reconnecting, ReconnectingEvent{
		Attempt:     attempt,
		Delay:       delay,
		MaxAttempts: m.scheduler.Config().MaxAttempts,
	})
}

func (m *Manager) handleRetriesExhausted() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.setStatusLocked(StatusDisconnected)
	m.mu.Unlock()

	m.log.Warn("reconnection attempts exhausted")
	m.metrics.ReconnectFailed()
	m.bus.Emit(events.ReconnectFailed, nil)
}

func (m *Manager) handleNetwork(online bool) {
	if !online {
		m.mu.Lock()
		if m.destroyed {
			m.mu.Unlock()
			return
		}
		m.scheduler.Cancel()
		m.gen++
		t := m.tr
		m.tr = nil
		m.setStatusLocked(StatusOffline)
		m.mu.Unlock()

		if t != nil {
			t.Close()
		}
		m.log.Warn("network offline")
		m.bus.Emit(events.Offline, nil)
		return
	}

	m.mu.Lock()
	if m.destroyed || m.status != StatusOffline {
		m.mu.Unlock()
		return
	}
	resume := m.cfg.AutoReconnect && m.reconnectArmed && m.creds.IsAuthenticated()
	if resume {
		m.setStatusLocked(StatusReconnecting)
	} else {
		m.setStatusLocked(StatusDisconnected)
	}
	m.mu.Unlock()

	m.log.Info("network back online")
	if resume {
		m.scheduler.ScheduleReconnect()
	}
}

// --- inbound server events ---

// handleMessage applies a server event to the session, re-publishes it to
// raw subscribers, and publishes state_changed when the session mutated.
func (m *Manager) handleMessage(gen int, event string, data json.RawMessage) {
	m.mu.Lock()
	if gen != m.gen || m.destroyed {
		m.mu.Unlock()
		return
	}
	var raw []SubscriptionHandler
	for _, s := range m.subs[event] {
		raw = append(raw, s.h)
	}
	m.mu.Unlock()

	m.metrics.SocketEvent(event)

	changed := false
	switch event {
	case EventQueueJoined:
		var p QueueJoinedPayload
		if m.decode(event, data, &p) {
			m.session.upsertQueue(QueueEntry(p))
			changed = true
		}

	case EventQueueLeft:
		var p QueueLeftPayload
		if m.decode(event, data, &p) {
			m.session.removeQueue(p.TournamentID)
			changed = true
		}

	case EventMatchFound:
		var p MatchFoundPayload
		if m.decode(event, data, &p) {
			m.session.startMatch(p.TournamentID, Match{
				MatchID: p.MatchID,
				Players: p.Players,
			})
			changed = true
		}

	case EventMatchPlayerJoined:
		var p MatchPlayerPayload
		if m.decode(event, data, &p) {
			changed = m.session.mutateMatch(p.MatchID, func(match *Match) {
				for _, pl := range match.Players {
					if pl.ID == p.PlayerID {
						return
					}
				}
				match.Players = append(match.Players, MatchPlayer{ID: p.PlayerID})
			})
		}

	case EventMatchPlayerLeft:
		var p MatchPlayerPayload
		if m.decode(event, data, &p) {
			changed = m.session.mutateMatch(p.MatchID, func(match *Match) {
				for i, pl := range match.Players {
					if pl.ID == p.PlayerID {
						match.Players = append(match.Players[:i], match.Players[i+1:]...)
						return
					}
				}
			})
		}

	case EventMatchReadyUpdate:
		var p MatchReadyUpdatePayload
		if m.decode(event, data, &p) {
			changed = m.session.mutateMatch(p.MatchID, func(match *Match) {
				for i := range match.Players {
					if match.Players[i].ID == p.PlayerID {
						match.Players[i].IsReady = p.IsReady
						return
					}
				}
			})
		}

	case EventMatchAllReady:
		var p matchIntentPayload
		if m.decode(event, data, &p) {
			changed = m.session.mutateMatch(p.MatchID, func(match *Match) {
				match.State = MatchReady
			})
		}

	case EventMatchStateChange:
		var p MatchStateChangePayload
		if m.decode(event, data, &p) {
			changed = m.session.mutateMatch(p.MatchID, func(match *Match) {
				match.State = p.State
			})
		}

	case EventMatchLaunch:
		var p MatchLaunchPayload
		if m.decode(event, data, &p) {
			changed = m.session.mutateMatch(p.MatchID, func(match *Match) {
				match.State = MatchInProgress
			})
		}

	case EventMatchPlayerAccepted:
		var p MatchPlayerPayload
		if m.decode(event, data, &p) {
			changed = m.session.mutateMatch(p.MatchID, func(match *Match) {
				for i := range match.Players {
					if match.Players[i].ID == p.PlayerID {
						match.Players[i].HasAccepted = true
						return
					}
				}
			})
		}

	case EventMatchAccepted:
		// Confirmation only; nothing to mutate until all_ready arrives.

	case EventMatchCancelled:
		// A cancelled match invalidates the whole matchmaking attempt.
		var p MatchCancelledPayload
		if m.decode(event, data, &p) {
			m.session.clearMatch()
			m.session.clearQueue()
			changed = true
		}

	case EventMatchDeclined:
		// Declines tear down only the match; queue entries stand.
		var p MatchDeclinedPayload
		if m.decode(event, data, &p) {
			m.session.clearMatch()
			changed = true
		}

	case EventNotification:
		var p NotificationPayload
		if m.decode(event, data, &p) {
			n := Notification(p)
			m.session.addNotification(n)
			m.bus.Emit(events.Notification, n)
			changed = true
		}

	case EventRoomKicked, EventRoomClosed:
		// Re-published to raw subscribers only.

	default:
		m.log.Debugf("unhandled server event %s", event)
	}

	for _, h := range raw {
		h(data)
	}
	if changed {
		m.emitStateChanged()
	}
}

func (m *Manager) decode(event string, data json.RawMessage, out any) bool {
	if err := json.Unmarshal(data, out); err != nil {
		m.log.Warnf("malformed %s payload: %v", event, err)
		return false
	}
	return true
}

func (m *Manager) setStatusLocked(s Status) {
	if m.status == s {
		return
	}
	m.log.Debugf("status %s -> %s", m.status, s)
	m.status = s
	m.metrics.SetConnectionStatus(float64(s))
}

func (m *Manager) emitStateChanged() {
	m.bus.Emit(events.StateChanged, m.session.Snapshot())
}
