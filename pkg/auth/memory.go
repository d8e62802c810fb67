// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package auth

import "sync"

// MemoryStore is an in-process credential store. It is the default backend
// for game clients, where credentials live only as long as the process.
type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
	set  bool
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored credential.
func (s *MemoryStore) Get() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set || s.cred.AccessToken == "" {
		return Credential{}, false
	}
	return s.cred, true
}

// Set replaces the stored credential pair.
func (s *MemoryStore) Set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{AccessToken: access, RefreshToken: refresh}
	s.set = true
}

// SetAccess replaces the access token and keeps the stored refresh token.
func (s *MemoryStore) SetAccess(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred.AccessToken = access
	s.set = true
}

// Clear removes the stored credential.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	s.set = false
}

// IsAuthenticated reports whether an access token is present.
func (s *MemoryStore) IsAuthenticated() bool {
	_, ok := s.Get()
	return ok
}
