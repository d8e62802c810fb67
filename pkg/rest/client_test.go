// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arenalink/arena-go-sdk/pkg/auth"
	"github.com/arenalink/arena-go-sdk/pkg/events"
)

// newTestBackend serves a protected endpoint that accepts only accessToken
// "fresh" and a refresh endpoint that exchanges refreshToken "refresh-ok"
// for it. It counts refresh calls.
type testBackend struct {
	srv          *httptest.Server
	refreshCalls int32
	protectedHit int32
}

func newTestBackend(t *testing.T) *testBackend {
	b := &testBackend{}
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.refreshCalls, 1)
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != "refresh-ok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		// Simulate backend latency so concurrent 401 handling overlaps.
		time.Sleep(50 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "fresh",
			"refreshToken": "refresh-ok-2",
		})
	})

	mux.HandleFunc("/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.protectedHit, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "u1"})
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func newTestClient(b *testBackend, store auth.Store, bus *events.Bus) *Client {
	return NewClient(Config{BaseURL: b.srv.URL, Timeout: 5 * time.Second}, store, bus)
}

func TestClient_AttachesBearer(t *testing.T) {
	b := newTestBackend(t)
	store := auth.NewMemoryStore()
	store.Set("fresh", "refresh-ok")
	c := newTestClient(b, store, events.NewBus())

	var out struct {
		ID string `json:"id"`
	}
	if err := c.Get(context.Background(), "/v1/profile", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.ID != "u1" {
		t.Errorf("profile id = %q, expected %q", out.ID, "u1")
	}
	if n := atomic.LoadInt32(&b.refreshCalls); n != 0 {
		t.Errorf("refresh calls = %d, expected 0 for a valid token", n)
	}
}

func TestClient_RefreshAndRetryOnce(t *testing.T) {
	b := newTestBackend(t)
	store := auth.NewMemoryStore()
	store.Set("stale", "refresh-ok")
	c := newTestClient(b, store, events.NewBus())

	var out struct {
		ID string `json:"id"`
	}
	if err := c.Get(context.Background(), "/v1/profile", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.ID != "u1" {
		t.Errorf("profile id = %q, expected %q", out.ID, "u1")
	}

	if n := atomic.LoadInt32(&b.refreshCalls); n != 1 {
		t.Errorf("refresh calls = %d, expected 1", n)
	}
	cred, ok := store.Get()
	if !ok || cred.AccessToken != "fresh" || cred.RefreshToken != "refresh-ok-2" {
		t.Errorf("stored credential = %+v, expected refreshed pair", cred)
	}
}

func TestClient_ConcurrentFailuresShareOneRefresh(t *testing.T) {
	b := newTestBackend(t)
	store := auth.NewMemoryStore()
	store.Set("stale", "refresh-ok")
	c := newTestClient(b, store, events.NewBus())

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out struct {
				ID string `json:"id"`
			}
			errs[i] = c.Get(context.Background(), "/v1/profile", &out)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d error = %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&b.refreshCalls); n != 1 {
		t.Errorf("refresh calls = %d, expected exactly 1 shared refresh", n)
	}
}

func TestClient_RetriedRequestFailsOutright(t *testing.T) {
	// Backend whose refresh succeeds but whose protected endpoint rejects
	// everything: the retried call must fail without a second refresh.
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "still-bad",
			"refreshToken": "refresh-ok",
		})
	})
	mux.HandleFunc("/v1/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := auth.NewMemoryStore()
	store.Set("stale", "refresh-ok")
	c := NewClient(Config{BaseURL: srv.URL}, store, events.NewBus())

	err := c.Get(context.Background(), "/v1/profile", nil)
	if !IsAuthError(err) {
		t.Fatalf("Get() error = %v, expected auth error", err)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("refresh calls = %d, expected 1 (no second refresh after the retry)", n)
	}
}

func TestClient_NoRefreshTokenFailsImmediately(t *testing.T) {
	b := newTestBackend(t)
	store := auth.NewMemoryStore()
	store.Set("stale", "") // no refresh token
	bus := events.NewBus()

	var loggedOut bool
	bus.On(events.ForcedLogout, func(any) { loggedOut = true })

	c := newTestClient(b, store, bus)
	err := c.Get(context.Background(), "/v1/profile", nil)
	if !IsAuthError(err) {
		t.Fatalf("Get() error = %v, expected auth error", err)
	}
	if n := atomic.LoadInt32(&b.refreshCalls); n != 0 {
		t.Errorf("refresh calls = %d, expected 0 without a refresh token", n)
	}
	if !loggedOut {
		t.Error("forced_logout should be published when refresh cannot run")
	}
	if store.IsAuthenticated() {
		t.Error("credentials should be cleared after a failed refresh")
	}
}

func TestClient_FailedRefreshForcesLogout(t *testing.T) {
	b := newTestBackend(t)
	store := auth.NewMemoryStore()
	store.Set("stale", "refresh-bad")
	bus := events.NewBus()

	var loggedOut bool
	bus.On(events.ForcedLogout, func(any) { loggedOut = true })

	c := newTestClient(b, store, bus)
	err := c.Get(context.Background(), "/v1/profile", nil)
	if !IsAuthError(err) {
		t.Fatalf("Get() error = %v, expected auth error", err)
	}
	if !loggedOut {
		t.Error("forced_logout should be published after a failed refresh")
	}
	if store.IsAuthenticated() {
		t.Error("credentials should be cleared after a failed refresh")
	}
}

func TestClient_TimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	store := auth.NewMemoryStore()
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, store, events.NewBus())

	err := c.Get(context.Background(), "/slow", nil)
	if !IsTimeout(err) {
		t.Errorf("Get() error = %v, expected timeout classification", err)
	}
}

func TestClient_ServerErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := auth.NewMemoryStore()
	store.Set("fresh", "")
	c := NewClient(Config{BaseURL: srv.URL}, store, events.NewBus())

	err := c.Get(context.Background(), "/v1/thing", nil)
	if !IsKind(err, KindServer) {
		t.Errorf("Get() error = %v, expected server classification", err)
	}
}
