// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package metrics exposes Prometheus instrumentation for the SDK. All
// Collector methods are nil-receiver safe, so instrumented components never
// need to check whether metrics are enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector bundles the SDK's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	connectionStatus  prometheus.Gauge
	reconnectAttempts prometheus.Counter
	reconnectFailures prometheus.Counter
	socketEvents      *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	tokenRefreshes    *prometheus.CounterVec
}

// NewCollector creates a collector with go/process collectors plus the SDK
// metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		connectionStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arena_sdk_connection_status",
			Help: "Current connection status (0 disconnected, 1 connecting, 2 connected, 3 reconnecting, 4 offline).",
		}),
		reconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_sdk_reconnect_attempts_total",
			Help: "Total number of scheduled reconnection attempts.",
		}),
		reconnectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_sdk_reconnect_failures_total",
			Help: "Total number of times the reconnection budget was exhausted.",
		}),
		socketEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_sdk_socket_events_total",
			Help: "Inbound server events by event name.",
		}, []string{"event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_sdk_http_requests_total",
			Help: "Outbound HTTP requests by method and outcome.",
		}, []string{"method", "outcome"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_sdk_token_refreshes_total",
			Help: "Credential refresh operations by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.connectionStatus,
		c.reconnectAttempts,
		c.reconnectFailures,
		c.socketEvents,
		c.httpRequests,
		c.tokenRefreshes,
	)
	return c
}

// Registry returns the private registry for scraping.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// SetConnectionStatus records the numeric connection status.
func (c *Collector) SetConnectionStatus(status float64) {
	if c == nil {
		return
	}
	c.connectionStatus.Set(status)
}

// ReconnectAttempt counts one scheduled reconnection attempt.
func (c *Collector) ReconnectAttempt() {
	if c == nil {
		return
	}
	c.reconnectAttempts.Inc()
}

// ReconnectFailed counts one exhausted reconnection budget.
func (c *Collector) ReconnectFailed() {
	if c == nil {
		return
	}
	c.reconnectFailures.Inc()
}

// SocketEvent counts one inbound server event.
func (c *Collector) SocketEvent(event string) {
	if c == nil {
		return
	}
	c.socketEvents.WithLabelValues(event).Inc()
}

// HTTPRequest counts one outbound request.
func (c *Collector) HTTPRequest(method, outcome string) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, outcome).Inc()
}

// TokenRefresh counts one refresh operation ("success" or "failure").
func (c *Collector) TokenRefresh(result string) {
	if c == nil {
		return
	}
	c.tokenRefreshes.WithLabelValues(result).Inc()
}
