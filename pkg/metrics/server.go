// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes a collector's registry over HTTP for scraping. Server-side
// SDK embeddings (bot runners, relay services) enable it; game clients
// normally do not.
type Server struct {
	server   *http.Server
	port     int
	endpoint string
}

// NewServer creates a scrape server for the collector.
func NewServer(port int, endpoint string, c *Collector) *Server {
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		port:     port,
		endpoint: endpoint,
	}
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		logrus.Infof("metrics server listening on port %d%s", s.port, s.endpoint)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("metrics server failed: %v", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down metrics server...")
	return s.server.Shutdown(ctx)
}
