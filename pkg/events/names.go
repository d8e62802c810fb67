// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package events

// Public notification events published by the SDK.
const (
	// Connected fires when the socket is established and authenticated.
	Connected = "connected"
	// Connecting fires when a connection attempt starts.
	Connecting = "connecting"
	// Disconnected fires with a realtime.DisconnectedEvent payload.
	Disconnected = "disconnected"
	// Reconnecting fires with a realtime.ReconnectingEvent payload.
	Reconnecting = "reconnecting"
	// Reconnected fires with a realtime.ReconnectedEvent payload.
	Reconnected = "reconnected"
	// ReconnectFailed fires when the retry budget is exhausted.
	ReconnectFailed = "reconnect_failed"
	// Offline fires when the network monitor reports loss of connectivity.
	Offline = "offline"
	// Error fires with an error payload for advisory connection failures.
	Error = "error"
	// StateChanged fires with a realtime.SessionSnapshot payload after every
	// session mutation.
	StateChanged = "state_changed"
	// ForcedLogout fires when a credential refresh fails and stored
	// credentials have been cleared.
	ForcedLogout = "forced_logout"
	// Notification fires with a realtime.Notification payload.
	Notification = "notification"
)
