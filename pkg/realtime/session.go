// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package realtime

import (
	"sync"
	"time"
)

// MaxNotifications bounds the stored notification sequence.
const MaxNotifications = 50

// QueueEntry is one queued tournament, keyed by TournamentID.
type QueueEntry struct {
	TournamentID  string    `json:"tournamentId"`
	GameID        string    `json:"gameId"`
	Position      int       `json:"position"`
	EstimatedWait int       `json:"estimatedWait"` // seconds
	QueuedAt      time.Time `json:"queuedAt"`
	EntryFee      float64   `json:"entryFee"`
	Currency      string    `json:"currency"`
}

// MatchState is the tracked match's lifecycle sub-state.
type MatchState string

const (
	MatchWaiting    MatchState = "waiting"
	MatchReady      MatchState = "ready"
	MatchStarting   MatchState = "starting"
	MatchInProgress MatchState = "in_progress"
	MatchFinished   MatchState = "finished"
)

// MatchPlayer is one participant in the tracked match.
type MatchPlayer struct {
	ID          string `json:"id"`
	IsReady     bool   `json:"isReady"`
	HasAccepted bool   `json:"hasAccepted"`
}

// Match is the client's view of its current match room.
type Match struct {
	MatchID string        `json:"matchId"`
	State   MatchState    `json:"state"`
	Players []MatchPlayer `json:"players"`
}

// Notification is one platform notification, newest first in the session.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionSnapshot is the consumer-facing copy of the session published with
// every state_changed event.
type SessionSnapshot struct {
	InLobby           bool           `json:"inLobby"`
	QueuedTournaments []QueueEntry   `json:"queuedTournaments"`
	CurrentMatch      *Match         `json:"currentMatch,omitempty"`
	Notifications     []Notification `json:"notifications"`
	UnreadCount       int            `json:"unreadCount"`
}

// Session is the client's memory of lobby/queue/match membership. It
// survives dropped connections so that reconnection resumes where the
// client left off, and is reset only by an explicit disconnect or teardown.
type Session struct {
	mu            sync.RWMutex
	inLobby       bool
	queueOrder    []string
	queued        map[string]QueueEntry
	match         *Match
	notifications []Notification
	unread        int
}

func newSession() *Session {
	return &Session{queued: make(map[string]QueueEntry)}
}

// InLobby reports lobby membership.
func (s *Session) InLobby() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inLobby
}

// QueuedTournaments returns the queued entries in insertion order.
func (s *Session) QueuedTournaments() []QueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queuedLocked()
}

// CurrentMatch returns a copy of the tracked match, or nil.
func (s *Session) CurrentMatch() *Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMatch(s.match)
}

// Notifications returns the stored notifications, newest first.
func (s *Session) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification{}, s.notifications...)
}

// UnreadCount returns the unread notification count.
func (s *Session) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Snapshot returns a deep copy of the whole session.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{
		InLobby:           s.inLobby,
		QueuedTournaments: s.queuedLocked(),
		CurrentMatch:      copyMatch(s.match),
		Notifications:     append([]Notification{}, s.notifications...),
		UnreadCount:       s.unread,
	}
}

func (s *Session) queuedLocked() []QueueEntry {
	entries := make([]QueueEntry, 0, len(s.queueOrder))
	for _, id := range s.queueOrder {
		entries = append(entries, s.queued[id])
	}
	return entries
}

func copyMatch(m *Match) *Match {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Players = append([]MatchPlayer{}, m.Players...)
	return &cp
}

// --- mutations, driven by the connection manager ---

func (s *Session) setLobby(in bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inLobby = in
}

// upsertQueue adds or replaces the entry for its tournament id. A duplicate
// join event replaces the entry in place rather than duplicating it.
func (s *Session) upsertQueue(e QueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.queued[e.TournamentID]; !exists {
		s.queueOrder = append(s.queueOrder, e.TournamentID)
	}
	s.queued[e.TournamentID] = e
}

func (s *Session) removeQueue(tournamentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeQueueLocked(tournamentID)
}

func (s *Session) removeQueueLocked(tournamentID string) {
	if _, exists := s.queued[tournamentID]; !exists {
		return
	}
	delete(s.queued, tournamentID)
	for i, id := range s.queueOrder {
		if id == tournamentID {
			s.queueOrder = append(s.queueOrder[:i], s.queueOrder[i+1:]...)
			break
		}
	}
}

func (s *Session) clearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = make(map[string]QueueEntry)
	s.queueOrder = nil
}

// startMatch clears any queue entry for the tournament and begins tracking
// the match in the waiting sub-state.
func (s *Session) startMatch(tournamentID string, m Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeQueueLocked(tournamentID)
	if m.State == "" {
		m.State = MatchWaiting
	}
	s.match = &m
}

func (s *Session) clearMatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.match = nil
}

// matchID returns the tracked match id, or "".
func (s *Session) matchID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.match == nil {
		return ""
	}
	return s.match.MatchID
}

// mutateMatch applies fn to the tracked match if its id matches. Events for
// a stale or absent match are silently ignored: late or duplicate events
// are expected under retransmission.
func (s *Session) mutateMatch(matchID string, fn func(*Match)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match == nil || s.match.MatchID != matchID {
		return false
	}
	fn(s.match)
	return true
}

// addNotification prepends and evicts beyond MaxNotifications.
func (s *Session) addNotification(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]Notification{n}, s.notifications...)
	if len(s.notifications) > MaxNotifications {
		s.notifications = s.notifications[:MaxNotifications]
	}
	s.unread++
}

func (s *Session) markRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = 0
}

// reset empties the session. Called only on explicit disconnect or
// teardown, never on a dropped connection.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inLobby = false
	s.queueOrder = nil
	s.queued = make(map[string]QueueEntry)
	s.match = nil
	s.notifications = nil
	s.unread = 0
}
