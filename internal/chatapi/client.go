// ABOUTME: HTTP client for the chat backend's /chat and /health endpoints
// ABOUTME: Implements session.Chatter with request ids and optional bearer auth

package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/coven-chat/internal/session"
)

// ErrMalformedResponse is returned when a successful response has no usable "response" field.
var ErrMalformedResponse = errors.New("malformed chat response")

// maxErrorBody bounds how much of an error response body is read.
const maxErrorBody = 4096

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned status %d", e.Code)
}

// Client talks to a chat backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for health check failures and request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat posts req to /chat and returns the backend's reply.
func (c *Client) Chat(ctx context.Context, req session.Request) (string, error) {
	body, err := json.Marshal(ChatRequest{
		Message: req.Message,
		History: PairsFromExchanges(req.History),
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	requestID := httpReq.Header.Get("X-Request-ID")
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("chat response received",
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"context_exchanges", len(req.History),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", readStatusError(resp)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if chatResp.Response == nil {
		return "", fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}

	return *chatResp.Response, nil
}

// Health queries /health. It never fails: any error is logged and the
// returned status reports the bot as not ready.
func (c *Client) Health(ctx context.Context) HealthResponse {
	health, err := c.health(ctx)
	if err != nil {
		c.logger.Warn("health check failed", "error", err, "server", c.baseURL)
		return HealthResponse{Status: "unreachable"}
	}
	return health
}

// Ready reports whether the backend says its bot is ready.
func (c *Client) Ready(ctx context.Context) bool {
	return c.Health(ctx).BotReady
}

func (c *Client) health(ctx context.Context) (HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthResponse{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("fetching health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthResponse{}, readStatusError(resp)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return HealthResponse{}, fmt.Errorf("parsing health response: %w", err)
	}
	return health, nil
}

// newRequest builds a request with the shared headers set.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// readStatusError builds a StatusError, pulling a message from a JSON error body when present.
func readStatusError(resp *http.Response) error {
	statusErr := &StatusError{Code: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return statusErr
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil {
		switch {
		case errResp.Error != "":
			statusErr.Message = errResp.Error
		case errResp.Detail != "":
			statusErr.Message = errResp.Detail
		}
	}
	return statusErr
}
