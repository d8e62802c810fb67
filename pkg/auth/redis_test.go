// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package auth

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	s := NewRedisStore(client, RedisStoreConfig{Namespace: "test"})
	s.Set("access-1", "refresh-1")

	cred, ok := s.Get()
	if !ok {
		t.Fatal("Get() should return true after Set()")
	}
	if cred.AccessToken != "access-1" {
		t.Errorf("AccessToken = %q, expected %q", cred.AccessToken, "access-1")
	}
	if cred.RefreshToken != "refresh-1" {
		t.Errorf("RefreshToken = %q, expected %q", cred.RefreshToken, "refresh-1")
	}
}

func TestRedisStore_SetAccessPreservesRefresh(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	s := NewRedisStore(client, RedisStoreConfig{Namespace: "test"})
	s.Set("access-1", "refresh-1")
	s.SetAccess("access-2")

	cred, ok := s.Get()
	if !ok {
		t.Fatal("Get() should return true after SetAccess()")
	}
	if cred.AccessToken != "access-2" {
		t.Errorf("AccessToken = %q, expected %q", cred.AccessToken, "access-2")
	}
	if cred.RefreshToken != "refresh-1" {
		t.Errorf("RefreshToken = %q, expected preserved %q", cred.RefreshToken, "refresh-1")
	}
}

func TestRedisStore_Clear(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	s := NewRedisStore(client, RedisStoreConfig{Namespace: "test"})
	s.Set("access-1", "refresh-1")
	s.Clear()

	if _, ok := s.Get(); ok {
		t.Error("Get() should return false after Clear()")
	}
}

func TestRedisStore_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	s := NewRedisStore(client, RedisStoreConfig{Namespace: "ttl"})
	s.Set("access-1", "refresh-1")

	ttl := mr.TTL(redisKeyPrefix + "ttl")
	if ttl <= 0 || ttl > DefaultRedisTTL {
		t.Errorf("TTL = %v, expected in (0, %v]", ttl, DefaultRedisTTL)
	}
}

func TestRedisStore_DegradesWhenUnavailable(t *testing.T) {
	client, mr := setupTestRedis(t)

	s := NewRedisStore(client, RedisStoreConfig{Namespace: "down"})
	s.Set("access-1", "refresh-1")

	// Kill the backend: every operation must degrade to "no credential"
	// instead of propagating an error.
	mr.Close()

	if _, ok := s.Get(); ok {
		t.Error("Get() should return false when Redis is unavailable")
	}
	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() should be false when Redis is unavailable")
	}

	// These must not panic.
	s.Set("access-2", "refresh-2")
	s.SetAccess("access-3")
	s.Clear()
}

func TestRedisStore_NamespaceIsolation(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	a := NewRedisStore(client, RedisStoreConfig{Namespace: "a"})
	b := NewRedisStore(client, RedisStoreConfig{Namespace: "b"})

	a.Set("access-a", "refresh-a")

	if _, ok := b.Get(); ok {
		t.Error("namespaces must not share credentials")
	}
}
