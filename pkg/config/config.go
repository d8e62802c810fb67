// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package config holds SDK configuration loaded from the environment, with
// an optional YAML overlay for embedding games that ship a settings file.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/arenalink/arena-go-sdk/pkg/backoff"
)

// Config holds all SDK configuration. Fields are populated from environment
// variables via github.com/caarlos0/env struct tags; a YAML settings file can
// overlay them through LoadFile.
type Config struct {
	// Platform endpoints. Required; enforced by Validate rather than an env
	// tag so a YAML settings file can supply them too.
	BaseURL   string `env:"ARENA_BASE_URL" yaml:"baseUrl"`
	SocketURL string `env:"ARENA_SOCKET_URL" yaml:"socketUrl"`

	Namespace string `env:"ARENA_NAMESPACE" envDefault:"default" yaml:"namespace"`

	// HTTP request behavior.
	RequestTimeout time.Duration `env:"ARENA_REQUEST_TIMEOUT" envDefault:"10s" yaml:"requestTimeout"`

	// Reconnection policy.
	AutoReconnect         bool          `env:"ARENA_AUTO_RECONNECT" envDefault:"true" yaml:"autoReconnect"`
	MaxReconnectAttempts  int           `env:"ARENA_MAX_RECONNECT_ATTEMPTS" envDefault:"5" yaml:"maxReconnectAttempts"`
	ReconnectInitialDelay time.Duration `env:"ARENA_RECONNECT_INITIAL_DELAY" envDefault:"1s" yaml:"reconnectInitialDelay"`
	ReconnectMaxDelay     time.Duration `env:"ARENA_RECONNECT_MAX_DELAY" envDefault:"30s" yaml:"reconnectMaxDelay"`
	ReconnectMultiplier   float64       `env:"ARENA_RECONNECT_MULTIPLIER" envDefault:"2.0" yaml:"reconnectMultiplier"`
	ReconnectJitter       float64       `env:"ARENA_RECONNECT_JITTER" envDefault:"0.25" yaml:"reconnectJitter"`

	// Credential persistence. Empty address keeps credentials in memory only.
	RedisAddr     string `env:"ARENA_REDIS_ADDR" yaml:"redisAddr"`
	RedisPassword string `env:"ARENA_REDIS_PASSWORD" yaml:"redisPassword"`

	// Network probing. Empty address disables active probing and the SDK
	// assumes the network is reachable.
	ProbeAddress  string        `env:"ARENA_PROBE_ADDRESS" yaml:"probeAddress"`
	ProbeInterval time.Duration `env:"ARENA_PROBE_INTERVAL" envDefault:"10s" yaml:"probeInterval"`

	// Metrics scrape server. Port 0 disables it.
	MetricsPort     int    `env:"ARENA_METRICS_PORT" envDefault:"0" yaml:"metricsPort"`
	MetricsEndpoint string `env:"ARENA_METRICS_ENDPOINT" envDefault:"/metrics" yaml:"metricsEndpoint"`

	LogLevel string `env:"ARENA_LOG_LEVEL" envDefault:"info" yaml:"logLevel"`
}

// Validate checks value ranges and cross-field constraints after parsing.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("ARENA_BASE_URL is required")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid ARENA_BASE_URL: %q", c.BaseURL)
	}
	if c.SocketURL == "" {
		return fmt.Errorf("ARENA_SOCKET_URL is required")
	}
	if u, err := url.Parse(c.SocketURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("invalid ARENA_SOCKET_URL: %q (must be ws:// or wss://)", c.SocketURL)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid ARENA_METRICS_PORT: %d (must be 0-65535)", c.MetricsPort)
	}
	if c.MaxReconnectAttempts < 1 {
		return fmt.Errorf("invalid ARENA_MAX_RECONNECT_ATTEMPTS: %d (must be at least 1)", c.MaxReconnectAttempts)
	}
	if c.ReconnectJitter < 0 || c.ReconnectJitter > 1 {
		return fmt.Errorf("invalid ARENA_RECONNECT_JITTER: %v (must be 0-1)", c.ReconnectJitter)
	}
	if c.ReconnectMultiplier < 1 {
		return fmt.Errorf("invalid ARENA_RECONNECT_MULTIPLIER: %v (must be at least 1)", c.ReconnectMultiplier)
	}
	return nil
}

// Backoff maps the reconnection fields to a scheduler policy.
func (c *Config) Backoff() backoff.Config {
	return backoff.Config{
		MaxAttempts:  c.MaxReconnectAttempts,
		InitialDelay: c.ReconnectInitialDelay,
		MaxDelay:     c.ReconnectMaxDelay,
		Multiplier:   c.ReconnectMultiplier,
		Jitter:       c.ReconnectJitter,
	}
}
