// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package arenasdk

import (
	"testing"
	"time"

	"github.com/arenalink/arena-go-sdk/pkg/config"
)

func testSDKConfig() *config.Config {
	return &config.Config{
		BaseURL:               "https://api.arenalink.test",
		SocketURL:             "wss://rt.arenalink.test/socket",
		Namespace:             "test",
		RequestTimeout:        5 * time.Second,
		AutoReconnect:         true,
		MaxReconnectAttempts:  3,
		ReconnectInitialDelay: time.Second,
		ReconnectMaxDelay:     10 * time.Second,
		ReconnectMultiplier:   2.0,
		ReconnectJitter:       0.25,
		LogLevel:              "warning",
	}
}

func TestNew_WiresEverything(t *testing.T) {
	s, err := New(testSDKConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if s.Credentials == nil || s.Bus == nil || s.Rest == nil || s.Realtime == nil || s.Metrics == nil {
		t.Fatal("New() left components unwired")
	}
	if s.Credentials.IsAuthenticated() {
		t.Error("a fresh SDK must start unauthenticated")
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testSDKConfig()
	cfg.SocketURL = "http://not-a-socket"
	if _, err := New(cfg); err == nil {
		t.Fatal("New() should reject an invalid socket url")
	}
}

func TestSDK_CredentialRoundtrip(t *testing.T) {
	s, err := New(testSDKConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	s.SetCredentials("access", "refresh")
	if !s.Credentials.IsAuthenticated() {
		t.Error("SetCredentials should authenticate the store")
	}

	s.Logout()
	if s.Credentials.IsAuthenticated() {
		t.Error("Logout should clear the store")
	}
}
