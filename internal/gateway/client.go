// Package gateway is the client for the remote maintenance collection: events,
// AC units, user accounts, login and employee statistics over REST/JSON.
//
// Reads of idempotent resources are retried on network errors, 429 and 5xx
// responses using the configured delays. POST is sent once.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/manav03panchal/aircare/internal/errors"
	"github.com/manav03panchal/aircare/internal/logging"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// UserAgent is sent with every request.
const UserAgent = "aircare/1.0"

// TokenSource returns the current bearer credential, or "" when signed out.
type TokenSource func() string

// Routes are the collection paths relative to the base URL.
type Routes struct {
	Maintenance string
	ACUnits     string
	Users       string
	Login       string
	Statistics  string
}

// DefaultRoutes returns the paths the maintenance server ships with.
func DefaultRoutes() Routes {
	return Routes{
		Maintenance: "/api/maintenance",
		ACUnits:     "/api/ac",
		Users:       "/users",
		Login:       "/auth/login",
		Statistics:  "/api/employee-statistics",
	}
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Routes      Routes
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	Token       TokenSource
	HTTPClient  *http.Client
}

// Client talks to the maintenance server.
type Client struct {
	baseURL    string
	routes     Routes
	client     *http.Client
	maxRetries int
	retryDelay []time.Duration
	token      TokenSource
}

// New creates a client. Zero-valued options fall back to defaults.
func New(opts Options) *Client {
	routes := opts.Routes
	def := DefaultRoutes()
	if routes.Maintenance == "" {
		routes.Maintenance = def.Maintenance
	}
	if routes.ACUnits == "" {
		routes.ACUnits = def.ACUnits
	}
	if routes.Users == "" {
		routes.Users = def.Users
	}
	if routes.Login == "" {
		routes.Login = def.Login
	}
	if routes.Statistics == "" {
		routes.Statistics = def.Statistics
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	token := opts.Token
	if token == nil {
		token = func() string { return "" }
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		routes:     routes,
		client:     httpClient,
		maxRetries: maxRetries,
		retryDelay: opts.RetryDelays,
		token:      token,
	}
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// idempotent reports whether a request may be repeated safely.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// do sends one request, retrying idempotent methods on transient failures,
// and returns the raw 2xx body.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	ctx = logging.EnsureRequestID(ctx)
	log := logging.LoggerFromContext(ctx)

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = data
	}

	attempts := 1
	if idempotent(method) {
		attempts = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && attempt < len(c.retryDelay) && c.retryDelay[attempt] > 0 {
			select {
			case <-ctx.Done():
				return nil, &errors.GatewayError{Method: method, Endpoint: path, Cause: ctx.Err()}
			case <-time.After(c.retryDelay[attempt]):
			}
		}

		start := time.Now()
		status, respBody, err := c.send(ctx, method, path, payload)
		log.Debug("gateway request",
			logging.KeyMethod, method,
			logging.KeyEndpoint, path,
			logging.KeyStatus, status,
			logging.KeyAttempt, attempt+1,
			logging.KeyDuration, time.Since(start).Milliseconds())

		if err != nil {
			lastErr = &errors.GatewayError{Method: method, Endpoint: path, Cause: err}
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}

		if status >= 200 && status < 300 {
			return respBody, nil
		}

		gerr := &errors.GatewayError{
			Method:   method,
			Endpoint: path,
			Status:   status,
			Message:  errorMessage(respBody),
		}
		if !gerr.Temporary() {
			return nil, gerr
		}
		lastErr = gerr
	}

	log.Warn("gateway request failed",
		logging.KeyMethod, method,
		logging.KeyEndpoint, path,
		logging.KeyError, lastErr)
	return nil, lastErr
}

// send performs a single HTTP exchange.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

// errorMessage pulls a human-readable message out of an error body.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// decode unmarshals a response that may or may not be wrapped in {"data": ...}.
func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		body = envelope.Data
	}

	return json.Unmarshal(body, v)
}

// decodeInto wraps a decode failure as a gateway error.
func decodeInto(method, path string, body []byte, v any) error {
	if err := decode(body, v); err != nil {
		return &errors.GatewayError{Method: method, Endpoint: path, Status: http.StatusOK, Message: "unexpected response body", Cause: err}
	}
	return nil
}

// resourcePath joins a collection route and an escaped id.
func resourcePath(route, id string) string {
	return route + "/" + url.PathEscape(id)
}

// isStatus reports whether err is a gateway error with the given status.
func isStatus(err error, status int) bool {
	ge, ok := errors.AsGatewayError(err)
	return ok && ge.Status == status
}

// requireID rejects empty identifiers before a request is built.
func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationError(field, "", "is required", nil)
	}
	return nil
}
