// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

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
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/util"
)

// Configuration constants for the sync API.
const (
	// DefaultBaseURL is where the development backend listens.
	DefaultBaseURL = "http://127.0.0.1:5000"

	// DefaultTimeout bounds each request.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// RequestIDHeader carries a fresh UUID on every request.
	RequestIDHeader = "X-Request-ID"
)

// Operation names used in TransportError.Op and log lines.
const (
	OpClassify      = "classify"
	OpChat          = "chat"
	OpLoad          = "load"
	OpUpdateStep    = "update_step"
	OpDeleteHistory = "delete_history"
)

// UserAgent is sent on every request. main overrides it with the build version.
var UserAgent = "helix/dev"

// Client talks to the sync API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client for baseURL with DefaultTimeout and no rate limit.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  slog.Default(),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithRateLimit paces outgoing requests to perSecond with the given burst.
// A non-positive perSecond disables pacing.
func (c *Client) WithRateLimit(perSecond float64, burst int) *Client {
	if perSecond <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLogger sets the logger. nil keeps the current one.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Classify asks the server for the intent of text.
func (c *Client) Classify(ctx context.Context, text string) (model.Intent, error) {
	var resp ClassifyResponse
	err := c.do(ctx, OpClassify, http.MethodPost, "/api/classify", nil,
		ClassifyRequest{Message: util.Normalize(text)}, &resp)
	if err != nil {
		return model.DefaultIntent, err
	}
	intent, _ := model.ParseIntent(resp.Intent)
	return intent, nil
}

// ClassifyIntent is Classify with failures absorbed: any error yields
// model.DefaultIntent. Classification only drives UI feedback.
func (c *Client) ClassifyIntent(ctx context.Context, text string) model.Intent {
	intent, err := c.Classify(ctx, text)
	if err != nil {
		c.logger.Warn("classification failed, using default intent",
			"default", model.DefaultIntent, "error", err)
	}
	return intent
}

// SendMessage posts a user message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, userID, text string) (*ChatReply, error) {
	var reply ChatReply
	err := c.do(ctx, OpChat, http.MethodPost, "/api/chat", nil,
		ChatRequest{Message: util.Normalize(text), UserID: userID}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// LoadHistory fetches the stored conversation and sequences for userID.
func (c *Client) LoadHistory(ctx context.Context, userID string) (*History, error) {
	var h History
	q := url.Values{"user_id": {userID}}
	if err := c.do(ctx, OpLoad, http.MethodGet, "/api/load", q, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateStep persists one field of one step. The response body is ignored.
func (c *Client) UpdateStep(ctx context.Context, u StepUpdate) error {
	u.Value = util.Normalize(u.Value)
	return c.do(ctx, OpUpdateStep, http.MethodPut, "/api/sequence/update", nil, u, nil)
}

// DeleteHistory removes all stored messages and sequences for userID.
func (c *Client) DeleteHistory(ctx context.Context, userID string) error {
	q := url.Values{"user_id": {userID}}
	return c.do(ctx, OpDeleteHistory, http.MethodDelete, "/api/delete_history", q, nil, nil)
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one request. body, if non-nil, is sent as JSON; out, if non-nil,
// receives the decoded response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	fail := func(status int, err error) error {
		return &TransportError{Op: op, Status: status, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(0, fmt.Errorf("rate limit wait: %w", err))
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fail(0, fmt.Errorf("create request: %w", err))
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get(RequestIDHeader))

	data, err := readResponse(resp)
	if err != nil {
		return fail(resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, fmt.Errorf("%w: %s", ErrStatus, errorDetail(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("parse response: %w", err))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
}

// readResponse reads at most MaxResponseSize bytes of the body.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// errorDetail extracts a short message from an error body: the "error" field
// of a JSON object if present, else the first line of the text.
func errorDetail(body []byte) string {
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &obj) == nil && obj.Error != "" {
		return obj.Error
	}
	s := strings.TrimSpace(util.FirstLine(string(body)))
	if s == "" {
		return "empty body"
	}
	return util.TruncateWidth(s, 200)
}
