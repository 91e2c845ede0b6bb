// Package client is a Go client for the smartplan HTTP API.
//
// Usage:
//
//	c := client.New("http://localhost:8080")
//	p, err := c.CreatePlan(ctx, &client.PlanRequest{Goal: "Launch the beta"})
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config tunes retries and the HTTP timeout.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// DefaultConfig returns the settings used by New.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
		RetryDelay: time.Second,
		Timeout:    30 * time.Second,
	}
}

// Client calls a smartplan server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// New creates a client with DefaultConfig.
func New(baseURL string) *Client {
	return NewWithConfig(baseURL, nil)
}

// NewWithConfig creates a client. A nil cfg means DefaultConfig; zero
// fields keep their defaults except MaxRetries, where negative disables
// retries.
func NewWithConfig(baseURL string, cfg *Config) *Client {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: def.Timeout},
		maxRetries: def.MaxRetries,
		retryDelay: def.RetryDelay,
	}
	if cfg.Timeout > 0 {
		c.httpClient.Timeout = cfg.Timeout
	}
	if cfg.RetryDelay > 0 {
		c.retryDelay = cfg.RetryDelay
	}
	switch {
	case cfg.MaxRetries < 0:
		c.maxRetries = 0
	case cfg.MaxRetries > 0:
		c.maxRetries = cfg.MaxRetries
	}
	return c
}

// APIError is an error response from the server.
type APIError struct {
	StatusCode  int
	Code        string
	Message     string
	Suggestions []string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("smartplan: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("smartplan: HTTP %d: [%s] %s", e.StatusCode, e.Code, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// CreatePlan posts req to /plan.
func (c *Client) CreatePlan(ctx context.Context, req *PlanRequest) (*Plan, error) {
	if req == nil {
		return nil, errors.New("smartplan: nil request")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("smartplan: encode request: %w", err)
	}

	var p Plan
	if err := c.do(ctx, http.MethodPost, "/plan", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Health checks the readiness probe.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/ready", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.once(ctx, method, path, body, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !apiErr.Temporary() {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("smartplan: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("smartplan: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("smartplan: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("smartplan: decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var envelope struct {
		Error struct {
			Code        string   `json:"code"`
			Message     string   `json:"message"`
			Suggestions []string `json:"suggestions"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Suggestions = envelope.Error.Suggestions
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}
