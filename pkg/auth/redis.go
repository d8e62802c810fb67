// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRedisTTL bounds how long a credential survives in Redis.
	DefaultRedisTTL = 30 * 24 * time.Hour
	// redisKeyPrefix is the prefix for all credential keys.
	redisKeyPrefix = "arena_sdk:credentials:"

	redisOpTimeout = 3 * time.Second
)

// RedisStore is a Redis-backed credential store for server-side SDK
// embeddings (bot runners, relay services) where credentials must survive
// process restarts. Every Redis failure degrades to "no credential"; nothing
// propagates to callers.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisStoreConfig configures a RedisStore.
type RedisStoreConfig struct {
	// Namespace distinguishes multiple SDK instances sharing one Redis.
	Namespace string
	// TTL overrides DefaultRedisTTL when positive.
	TTL time.Duration
}

// NewRedisStore creates a Redis-backed credential store.
func NewRedisStore(client *redis.Client, cfg RedisStoreConfig) *RedisStore {
	ns := cfg.Namespace
	if ns == "" {
		ns = "default"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{
		client: client,
		key:    redisKeyPrefix + ns,
		ttl:    ttl,
	}
}

// Get returns the stored credential, or false when the key is missing or
// Redis is unavailable.
func (s *RedisStore) Get() (Credential, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return Credential{}, false
	}
	if err != nil {
		logrus.Warnf("credential store: redis get failed, treating as unauthenticated: %v", err)
		return Credential{}, false
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		logrus.Warnf("credential store: corrupt credential record, treating as unauthenticated: %v", err)
		return Credential{}, false
	}
	if cred.AccessToken == "" {
		return Credential{}, false
	}
	return cred, true
}

// Set replaces the stored credential pair.
func (s *RedisStore) Set(access, refresh string) {
	s.write(Credential{AccessToken: access, RefreshToken: refresh})
}

// SetAccess replaces the access token and keeps the stored refresh token.
func (s *RedisStore) SetAccess(access string) {
	cred, _ := s.Get()
	cred.AccessToken = access
	s.write(cred)
}

// Clear removes the stored credential.
func (s *RedisStore) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		logrus.Warnf("credential store: redis del failed: %v", err)
	}
}

// IsAuthenticated reports whether an access token is present.
func (s *RedisStore) IsAuthenticated() bool {
	_, ok := s.Get()
	return ok
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) write(cred Credential) {
	data, err := json.Marshal(cred)
	if err != nil {
		logrus.Warnf("credential store: marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		logrus.Warnf("credential store: redis set failed: %v", err)
	}
}
