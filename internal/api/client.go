// Package api provides the authenticated HTTP client for the docforge
// server. Every outbound request attaches the current access token; a 401
// triggers at most one token refresh shared by all concurrent requests
// (single-flight), after which each failed request is replayed exactly
// once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docforge/docforge/internal/models"
)

const defaultTimeout = 60 * time.Second

// SessionSource is the token lifecycle contract the client consumes. Only
// the client mutates the session; everything else reads it.
type SessionSource interface {
	Current() *models.AuthSession
	Set(session *models.AuthSession) error
	Clear() error
}

// Client is the authenticated HTTP client for the docforge server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionSource
	log        *slog.Logger

	refreshMu sync.Mutex
	refresh   *refreshAttempt
}

// refreshAttempt is one in-flight token refresh. Concurrent 401s await
// the same attempt instead of starting their own.
type refreshAttempt struct {
	done chan struct{}
	err  error
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the given server base URL.
func New(baseURL string, sessions SessionSource, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		sessions:   sessions,
		log:        slog.Default(),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Request describes one HTTP call. Body is a factory rather than a reader
// so the request can be replayed after a token refresh.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        func() (io.Reader, error)

	// NoAuth skips the bearer token (login, register, refresh).
	NoAuth bool
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do executes the request. On a 401 it joins (or starts) the shared
// refresh, then replays the request exactly once with the new token. All
// other non-2xx statuses are classified and returned without retry.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, usedToken, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.NoAuth {
		if err := c.ensureFreshToken(ctx, usedToken); err != nil {
			return nil, err
		}

		resp, _, err = c.send(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			// Already retried once; do not loop.
			return nil, &AuthExpiredError{Reason: "request rejected after token refresh"}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(req.Path, resp.StatusCode, resp.Body)
	}

	return resp, nil
}

// send performs a single HTTP round trip and reports which access token
// it attached, so a 401 can tell a stale token from a fresh one.
func (c *Client) send(ctx context.Context, req Request) (*Response, string, error) {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := req.Body()
		if err != nil {
			return nil, "", fmt.Errorf("failed to build request body: %w", err)
		}
		body = b
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	usedToken := ""
	if !req.NoAuth {
		if session := c.sessions.Current(); session != nil && session.AccessToken != "" {
			usedToken = session.AccessToken
			httpReq.Header.Set("Authorization", "Bearer "+usedToken)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", &NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, "", &NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, usedToken, nil
}

// ensureFreshToken makes the session token usable again after a 401.
// It joins the in-flight refresh if one exists, skips refreshing entirely
// when another request already rotated the token, and otherwise starts
// the one shared refresh. The refresh itself is not cancellable: once
// started it always settles, and every waiter observes the same outcome.
func (c *Client) ensureFreshToken(ctx context.Context, staleToken string) error {
	c.refreshMu.Lock()
	attempt := c.refresh
	if attempt == nil {
		// A refresh that settled while this request was in flight already
		// rotated the token; just replay with it.
		if session := c.sessions.Current(); session != nil && session.AccessToken != "" && session.AccessToken != staleToken {
			c.refreshMu.Unlock()
			return nil
		}

		attempt = &refreshAttempt{done: make(chan struct{})}
		c.refresh = attempt
		go c.runRefresh(attempt)
	}
	c.refreshMu.Unlock()

	select {
	case <-attempt.done:
		return attempt.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runRefresh exchanges the refresh token for a new token pair. On failure
// the session is destroyed; the UI layer reacts to the cleared session.
func (c *Client) runRefresh(attempt *refreshAttempt) {
	defer func() {
		c.refreshMu.Lock()
		c.refresh = nil
		c.refreshMu.Unlock()
		close(attempt.done)
	}()

	session := c.sessions.Current()
	if !session.Refreshable() {
		_ = c.sessions.Clear()
		attempt.err = &AuthExpiredError{Reason: "no refresh token"}
		return
	}

	refreshed, err := c.refreshTokens(session.RefreshToken)
	if err != nil {
		c.log.Warn("token refresh failed, destroying session", "error", err)
		_ = c.sessions.Clear()
		attempt.err = &AuthExpiredError{Reason: err.Error()}
		return
	}

	if err := c.sessions.Set(refreshed); err != nil {
		attempt.err = fmt.Errorf("failed to store refreshed session: %w", err)
		return
	}

	c.log.Debug("token refresh succeeded")
}

// refreshTokens calls the refresh endpoint directly, outside Do, so a 401
// here cannot recurse into another refresh.
func (c *Client) refreshTokens(refreshToken string) (*models.AuthSession, error) {
	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	resp, _, err := c.send(context.Background(), Request{
		Method:      http.MethodPost,
		Path:        "/auth/refresh-token",
		ContentType: "application/json",
		Body:        func() (io.Reader, error) { return bytes.NewReader(payload), nil },
		NoAuth:      true,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus("/auth/refresh-token", resp.StatusCode, resp.Body)
	}

	return decodeTokenResponse(resp.Body)
}

// JSON issues a request with a JSON body (if in is non-nil) and decodes
// the response into out (if out is non-nil).
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	req := Request{Method: method, Path: path}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.ContentType = "application/json"
		req.Body = func() (io.Reader, error) { return bytes.NewReader(payload), nil }
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
