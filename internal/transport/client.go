// Package transport implements the HTTP client used to talk to the
// collector. Every call returns a Result: network, timeout and protocol
// failures are translated into a failed Result and never returned as Go
// errors. Calls are not retried.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds each request unless overridden.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the agent to the collector.
	DefaultUserAgent = "Rocks-Monitoramento-Agent/1.0"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 10 << 20
)

// User-facing error messages.
const (
	msgConnection  = "connection error: check that the server is running"
	msgTimeout     = "connection timed out, try again"
	msgInvalidBody = "invalid response from server"
)

// Client executes requests against the collector base URL and holds the
// default Authorization header shared by all authenticated calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger

	mu        sync.RWMutex
	authToken string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDefaultTimeout sets the timeout applied to every request.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for baseURL. A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		userAgent:  DefaultUserAgent,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("transport")
	return c
}

// BaseURL returns the collector base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetAuthToken sets the default bearer token. An empty token clears it.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// AuthToken returns the default bearer token, or "".
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

type requestOptions struct {
	timeout   time.Duration
	authToken *string
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

// WithTimeout overrides the client timeout for one call.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithAuthToken overrides the default bearer token for one call.
// An empty token sends the call without an Authorization header.
func WithAuthToken(token string) RequestOption {
	return func(o *requestOptions) { o.authToken = &token }
}

// Request sends method to endpoint (a path below the base URL) with body
// encoded as JSON for POST and PUT. Only HTTP 200 with a JSON body is a
// success.
func (c *Client) Request(ctx context.Context, method, endpoint string, body interface{}, opts ...RequestOption) Result {
	ro := requestOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&ro)
	}

	method = strings.ToUpper(method)
	var payload io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost, http.MethodPut:
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				c.logger.Error("Failed to marshal request body",
					zap.String("endpoint", endpoint),
					zap.Error(err))
				return Failure(KindUnexpected, fmt.Sprintf("unexpected error: %v", err), 0)
			}
			payload = bytes.NewReader(data)
		}
	default:
		return Failure(KindUnexpected, fmt.Sprintf("unsupported HTTP method: %s", method), 0)
	}

	ctx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, payload)
	if err != nil {
		c.logger.Error("Failed to create request",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return Failure(KindUnexpected, fmt.Sprintf("unexpected error: %v", err), 0)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	token := c.AuthToken()
	if ro.authToken != nil {
		token = *ro.authToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		result := classifyError(err)
		c.logger.Warn("Request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Stringer("kind", result.Kind),
			zap.Error(err))
		return result
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		result := classifyError(err)
		result.StatusCode = resp.StatusCode
		return result
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return decodeResponse(resp.StatusCode, data)
}

// decodeResponse maps a status code and body to a Result.
func decodeResponse(status int, body []byte) Result {
	if status == http.StatusOK {
		var parsed interface{}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return Failure(KindProtocol, msgInvalidBody, status)
		}
		return Result{Success: true, Data: parsed, StatusCode: status}
	}

	msg := fmt.Sprintf("HTTP error %d", status)
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if m, ok := parsed["message"].(string); ok && m != "" {
			msg = m
		}
	}
	return Failure(KindProtocol, msg, status)
}

// classifyError maps a transport error to a failed Result.
func classifyError(err error) Result {
	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return Failure(KindTimeout, msgTimeout, 0)
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.As(err, &dnsErr),
		errors.As(err, &opErr) && opErr.Op == "dial":
		return Failure(KindConnection, msgConnection, 0)
	case errors.Is(err, context.Canceled):
		return Failure(KindUnexpected, "request cancelled", 0)
	default:
		return Failure(KindUnexpected, fmt.Sprintf("request failed: %v", err), 0)
	}
}
