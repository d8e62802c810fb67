// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package arenasdk is the client SDK for the ArenaLink tournament platform.
// It wires the credential store, the event bus, the HTTP client and the
// realtime connection manager into one handle; embedding games construct an
// SDK once and keep it for the process lifetime.
package arenasdk

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/arenalink/arena-go-sdk/pkg/auth"
	"github.com/arenalink/arena-go-sdk/pkg/config"
	"github.com/arenalink/arena-go-sdk/pkg/events"
	"github.com/arenalink/arena-go-sdk/pkg/metrics"
	"github.com/arenalink/arena-go-sdk/pkg/netmon"
	"github.com/arenalink/arena-go-sdk/pkg/realtime"
	"github.com/arenalink/arena-go-sdk/pkg/rest"
	"github.com/arenalink/arena-go-sdk/pkg/transport"
)

// SDK is the platform client handle. All fields are wired by New and safe
// for concurrent use.
type SDK struct {
	Config      *config.Config
	Credentials auth.Store
	Bus         *events.Bus
	Rest        *rest.Client
	Realtime    *realtime.Manager
	Monitor     netmon.Monitor
	Metrics     *metrics.Collector

	redisClient *redis.Client
	probe       *netmon.ProbeMonitor
	metricsSrv  *metrics.Server
}

// New wires an SDK from configuration. It does not connect anything; call
// Connect (or SDK.Realtime.Connect) once credentials are stored.
func New(cfg *config.Config) (*SDK, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sdk config: %w", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	} else {
		logrus.Warnf("unknown log level %q, keeping %s", cfg.LogLevel, logrus.GetLevel())
	}

	s := &SDK{Config: cfg, Bus: events.NewBus()}

	// Credential store: Redis-backed when an address is configured so
	// server-side embeddings survive restarts, in-memory otherwise.
	if cfg.RedisAddr != "" {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		s.Credentials = auth.NewRedisStore(s.redisClient, auth.RedisStoreConfig{
			Namespace: cfg.Namespace,
		})
	} else {
		s.Credentials = auth.NewMemoryStore()
	}

	if cfg.ProbeAddress != "" {
		s.probe = netmon.NewProbeMonitor(netmon.ProbeConfig{
			Addr:     cfg.ProbeAddress,
			Interval: cfg.ProbeInterval,
		})
		s.probe.Start()
		s.Monitor = s.probe
	}

	s.Metrics = metrics.NewCollector()
	if cfg.MetricsPort > 0 {
		s.metricsSrv = metrics.NewServer(cfg.MetricsPort, cfg.MetricsEndpoint, s.Metrics)
		s.metricsSrv.Start()
	}

	s.Rest = rest.NewClient(rest.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout,
	}, s.Credentials, s.Bus)
	s.Rest.SetMetrics(s.Metrics)

	socketURL := cfg.SocketURL
	s.Realtime = realtime.NewManager(realtime.Config{
		AutoReconnect: cfg.AutoReconnect,
		Backoff:       cfg.Backoff(),
	}, s.Credentials, s.Bus, s.Monitor, func() transport.Transport {
		return transport.NewWebSocket(transport.WebSocketConfig{URL: socketURL})
	})
	s.Realtime.SetMetrics(s.Metrics)

	logrus.Infof("arena sdk initialized (namespace=%s)", cfg.Namespace)
	return s, nil
}

// SetCredentials stores a token pair, typically obtained from the game's own
// login flow.
func (s *SDK) SetCredentials(accessToken, refreshToken string) {
	s.Credentials.Set(accessToken, refreshToken)
}

// Connect establishes the realtime connection.
func (s *SDK) Connect(ctx context.Context) error {
	return s.Realtime.Connect(ctx)
}

// Logout is the voluntary path: it disconnects and clears stored
// credentials without publishing forced_logout.
func (s *SDK) Logout() {
	s.Realtime.Disconnect()
	s.Credentials.Clear()
}

// Close releases everything: the realtime connection, the probe goroutine,
// the metrics server, the Redis client and the event bus.
func (s *SDK) Close() error {
	s.Realtime.Destroy()
	if s.probe != nil {
		s.probe.Stop()
	}
	if s.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metricsSrv.Shutdown(ctx); err != nil {
			logrus.Warnf("metrics server shutdown: %v", err)
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			logrus.Warnf("redis close: %v", err)
		}
	}
	s.Bus.Close()
	return nil
}
