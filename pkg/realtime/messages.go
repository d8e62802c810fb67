// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package realtime

import "time"

// Server → client events. The manager decodes each into its typed payload
// and dispatches through one exhaustive switch, so adding an event without
// handling it is a compile-visible gap rather than a silent string miss.
const (
	EventQueueJoined         = "queue:joined"
	EventQueueLeft           = "queue:left"
	EventMatchFound          = "match:found"
	EventMatchPlayerJoined   = "match:player_joined"
	EventMatchPlayerLeft     = "match:player_left"
	EventMatchReadyUpdate    = "match:ready_update"
	EventMatchAllReady       = "match:all_ready"
	EventMatchStateChange    = "match:state_change"
	EventMatchLaunch         = "match:launch"
	EventMatchCancelled      = "match:cancelled"
	EventMatchAccepted       = "match:accepted"
	EventMatchDeclined       = "match:declined"
	EventMatchPlayerAccepted = "match:player_accepted"
	EventNotification        = "notification"

	// Declared in the vocabulary but deliberately not wired into session
	// mutation; they are decoded and re-published for consumers only.
	EventRoomKicked = "room:kicked"
	EventRoomClosed = "room:closed"
)

// Client → server intents.
const (
	IntentLobbyJoin       = "lobby:join"
	IntentLobbyLeave      = "lobby:leave"
	IntentGameSubscribe   = "game:subscribe"
	IntentGameUnsubscribe = "game:unsubscribe"
	IntentQueueJoin       = "queue:join"
	IntentQueueLeave      = "queue:leave"
	IntentMatchRoomJoin   = "match:join"
	IntentMatchRoomLeave  = "match:leave"
	IntentMatchReady      = "match:ready"
	IntentMatchLeave      = "match:leave_match"
	IntentMatchAccept     = "match:accept"
	IntentMatchDecline    = "match:decline"
)

// QueueJoinedPayload confirms queue membership for one tournament.
type QueueJoinedPayload struct {
	TournamentID  string    `json:"tournamentId"`
	GameID        string    `json:"gameId"`
	Position      int       `json:"position"`
	EstimatedWait int       `json:"estimatedWait"`
	QueuedAt      time.Time `json:"queuedAt"`
	EntryFee      float64   `json:"entryFee"`
	Currency      string    `json:"currency"`
}

// QueueLeftPayload removes one tournament from the queue.
type QueueLeftPayload struct {
	TournamentID string `json:"tournamentId"`
	Reason       string `json:"reason,omitempty"`
}

// MatchFoundPayload announces a match for a queued tournament.
type MatchFoundPayload struct {
	MatchID      string        `json:"matchId"`
	TournamentID string        `json:"tournamentId"`
	GameID       string        `json:"gameId"`
	Players      []MatchPlayer `json:"players"`
}

// MatchPlayerPayload identifies a player within a match room.
type MatchPlayerPayload struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
}

// MatchReadyUpdatePayload reports one player's ready flag.
type MatchReadyUpdatePayload struct {
	MatchID    string `json:"matchId"`
	PlayerID   string `json:"playerId"`
	IsReady    bool   `json:"isReady"`
	ReadyCount int    `json:"readyCount"`
	Total      int    `json:"total"`
}

// MatchStateChangePayload moves the match to a new sub-state.
type MatchStateChangePayload struct {
	MatchID string     `json:"matchId"`
	State   MatchState `json:"state"`
}

// MatchCancelledPayload tears the match down platform-wide.
type MatchCancelledPayload struct {
	MatchID string `json:"matchId"`
	Reason  string `json:"reason,omitempty"`
}

// MatchDeclinedPayload tears the match down match-scoped.
type MatchDeclinedPayload struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId,omitempty"`
}

// MatchLaunchPayload carries what the game needs to start.
type MatchLaunchPayload struct {
	MatchID   string `json:"matchId"`
	ServerURL string `json:"serverUrl,omitempty"`
	Token     string `json:"token,omitempty"`
}

// NotificationPayload is a generic platform notification.
type NotificationPayload struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- outbound intent payloads ---

type lobbyIntentPayload struct {
	// Reserved for future lobby routing; the lobby is global today.
}

type gameIntentPayload struct {
	GameID string `json:"gameId"`
}

type queueIntentPayload struct {
	TournamentID string `json:"tournamentId"`
}

type matchIntentPayload struct {
	MatchID string `json:"matchId"`
}

// DisconnectedEvent is the payload of the public disconnected event.
type DisconnectedEvent struct {
	Reason string `json:"reason"`
}

// ReconnectingEvent is the payload of the public reconnecting event.
type ReconnectingEvent struct {
	Attempt     int           `json:"attempt"`
	Delay       time.Duration `json:"delay"`
	MaxAttempts int           `json:"maxAttempts"`
}

// ReconnectedEvent is the payload of the public reconnected event.
type ReconnectedEvent struct {
	Attempts int `json:"attempts"`
}
