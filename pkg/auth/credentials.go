// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package auth holds the access/refresh credential pair used to authenticate
// both HTTP calls and the socket handshake.
package auth

// Credential is an access/refresh token pair. An empty access token means
// "unauthenticated".
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Store abstracts credential storage. Implementations must never propagate
// storage failures: a broken backend behaves as "no credential".
type Store interface {
	// Get returns the stored credential. The second return value is false
	// when no credential is stored or the backend is unavailable.
	Get() (Credential, bool)

	// Set replaces the stored credential pair.
	Set(access, refresh string)

	// SetAccess replaces the access token while preserving the previously
	// stored refresh token.
	SetAccess(access string)

	// Clear removes the stored credential.
	Clear()

	// IsAuthenticated reports whether an access token is present.
	IsAuthenticated() bool
}
