// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package realtime

// Status is the connection state machine's current state. Exactly one
// holder exists: the Manager.
type Status int

const (
	// StatusDisconnected is both the initial and the explicit-shutdown
	// terminal state.
	StatusDisconnected Status = iota

	// StatusConnecting means a connection attempt is in progress.
	StatusConnecting

	// StatusConnected means the socket is established and authenticated.
	StatusConnected

	// StatusReconnecting means a retry is scheduled or in progress after a
	// drop.
	StatusReconnecting

	// StatusOffline means the network monitor reports no connectivity.
	StatusOffline
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}
