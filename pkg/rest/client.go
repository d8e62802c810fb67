// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

// Package rest issues authenticated HTTP calls against the backend. On an
// authentication rejection it coordinates a single in-flight credential
// refresh shared by all concurrently failing requests, then retries the
// original call exactly once.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/arenalink/arena-go-sdk/pkg/auth"
	"github.com/arenalink/arena-go-sdk/pkg/events"
	"github.com/arenalink/arena-go-sdk/pkg/metrics"
)

// DefaultRefreshPath is the token refresh endpoint.
const DefaultRefreshPath = "/v1/auth/refresh"

// Config configures the request engine.
type Config struct {
	// BaseURL is the backend origin, e.g. https://api.arenalink.gg.
	BaseURL string
	// Timeout bounds each HTTP call. Defaults to 10s.
	Timeout time.Duration
	// RefreshPath overrides DefaultRefreshPath.
	RefreshPath string
}

// Client is the transport request engine. It shares the credential store and
// event bus with the realtime connection manager.
type Client struct {
	cfg     Config
	http    *http.Client
	creds   auth.Store
	bus     *events.Bus
	refresh singleflight.Group
	metrics *metrics.Collector
}

// Request describes one HTTP call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-marshalled when non-nil.
	Body any
	// Out receives the JSON-decoded response body when non-nil.
	Out any
	// NoAuth skips the bearer header and the refresh-and-retry machinery.
	NoAuth bool
}

// NewClient creates a request engine.
func NewClient(cfg Config, creds auth.Store, bus *events.Bus) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = DefaultRefreshPath
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		creds: creds,
		bus:   bus,
	}
}

// SetMetrics attaches an optional metrics collector.
func (c *Client) SetMetrics(m *metrics.Collector) { c.metrics = m }

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Out: out})
}

// Post issues a POST request with a JSON body and decodes the response.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Out: out})
}

// Put issues a PUT request with a JSON body and decodes the response.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Out: out})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do executes the request with bearer auth and the single refresh-and-retry.
func (c *Client) Do(ctx context.Context, req Request) error {
	err := c.do(ctx, req, false)
	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			var re *Error
			if errors.As(err, &re) {
				outcome = re.Kind.String()
			} else {
				outcome = "error"
			}
		}
		c.metrics.HTTPRequest(req.Method, outcome)
	}
	return err
}

// do performs one attempt; on a 401 for a not-yet-retried authenticated call
// it runs the shared refresh and retries exactly once.
func (c *Client) do(ctx context.Context, req Request, retried bool) error {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !req.NoAuth {
		io.Copy(io.Discard, resp.Body)
		if retried {
			// The refreshed credential was rejected too. Failing outright
			// here is what guarantees no retry loop under a misconfigured
			// backend.
			return &Error{Kind: KindAuth, Status: resp.StatusCode, Message: "request rejected after credential refresh"}
		}
		if err := c.refreshCredentials(ctx); err != nil {
			return err
		}
		return c.do(ctx, req, true)
	}

	if resp.StatusCode >= 400 {
		return responseError(resp)
	}

	if req.Out != nil {
		if err := json.NewDecoder(resp.Body).Decode(req.Out); err != nil {
			return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response body", Err: err}
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := strings.TrimSuffix(c.cfg.BaseURL, "/") + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: "request body not serializable", Err: err}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid request", Err: err}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if !req.NoAuth {
		if cred, ok := c.creds.Get(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+cred.AccessToken)
		}
	}
	return httpReq, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshCredentials runs the token refresh, shared across all callers that
// hit a 401 while it is in flight. Exactly one refresh call reaches the
// backend regardless of how many requests failed simultaneously. A failed
// refresh clears the stored credentials and publishes the forced-logout
// notification once.
func (c *Client) refreshCredentials(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (any, error) {
		cred, ok := c.creds.Get()
		if !ok || cred.RefreshToken == "" {
			c.forceLogout("no refresh token available")
			return nil, &Error{Kind: KindAuth, Message: "no refresh token available"}
		}

		var out refreshResponse
		// Bare call: NoAuth bypasses the 401 interception so a rejected
		// refresh can never recurse into another refresh.
		err := c.do(ctx, Request{
			Method: http.MethodPost,
			Path:   c.cfg.RefreshPath,
			Body:   refreshRequest{RefreshToken: cred.RefreshToken},
			Out:    &out,
			NoAuth: true,
		}, false)
		if err != nil {
			c.forceLogout(fmt.Sprintf("token refresh failed: %v", err))
			if c.metrics != nil {
				c.metrics.TokenRefresh("failure")
			}
			return nil, &Error{Kind: KindAuth, Message: "token refresh failed", Err: err}
		}

		c.creds.Set(out.AccessToken, out.RefreshToken)
		if c.metrics != nil {
			c.metrics.TokenRefresh("success")
		}
		logrus.Debug("rest: credential refresh succeeded")
		return nil, nil
	})
	return err
}

func (c *Client) forceLogout(reason string) {
	logrus.Warnf("rest: forcing logout: %s", reason)
	c.creds.Clear()
	if c.bus != nil {
		c.bus.Emit(events.ForcedLogout, reason)
	}
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindTransport, Message: "request failed", Err: err}
}

func responseError(resp *http.Response) error {
	// Surface the backend's message when it sends one.
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		if json.Unmarshal(data, &body) == nil {
			if body.Message != "" {
				msg = body.Message
			} else {
				msg = body.Error
			}
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	kind := KindValidation
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = KindAuth
	case resp.StatusCode >= 500:
		kind = KindServer
	}
	return &Error{Kind: kind, Status: resp.StatusCode, Message: msg}
}
