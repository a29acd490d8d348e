// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/util"
)

// Configuration constants for the OpenAI API.
const (
	// DefaultBaseURL is the base URL for the OpenAI API.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024

	userAgent = "gptchat-tui"
)

// sharedTransport pools connections for all clients.
var sharedTransport = &http.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 4,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// Config is the client configuration. It is fixed for the lifetime of a
// Client; settings changes build a new Client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       model.ModelID
	MaxTokens   int
	Temperature float64
	Echo        bool
}

// Client sends prompts to the endpoint selected by the configured model.
type Client struct {
	cfg        Config
	family     Family
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a client for cfg. An empty key still yields a client, but
// Send fails with ErrNotConfigured.
func New(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	cfg.Model = model.ModelOrDefault(cfg.Model.String())

	return &Client{
		cfg:        cfg,
		family:     FamilyFor(cfg.Model),
		httpClient: &http.Client{Transport: sharedTransport},
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
}

// WithHTTPClient replaces the HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithTimeout sets the per-request timeout. Zero disables it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithRateLimit paces requests to perMinute. Zero or less means unlimited.
func (c *Client) WithRateLimit(perMinute int) *Client {
	if perMinute <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Family returns the endpoint family for the configured model.
func (c *Client) Family() Family {
	return c.family
}

// Endpoint returns the full request URL.
func (c *Client) Endpoint() string {
	return c.cfg.BaseURL + c.family.Path()
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.cfg.APIKey != ""
}

// Send posts prompt and returns the generated text. It blocks until the
// response arrives, ctx is done, or the client timeout fires.
//
// Failures are *TransportError, *APIError or *ParseError; a missing key is
// ErrNotConfigured.
func (c *Client) Send(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &TransportError{Err: err}
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := c.family.BuildRequest(prompt, c.cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("openai request failed", "error", err, "duration", time.Since(start))
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	body, err := readResponse(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	return c.interpret(resp.StatusCode, body)
}

// interpret maps a response to text or an error. A success-shaped body
// wins regardless of status; an error-shaped body becomes an APIError.
func (c *Client) interpret(status int, body []byte) (string, error) {
	text, err := c.family.ParseResponse(body)
	if err == nil {
		return text, nil
	}

	apiErr, perr := parseAPIError(body)
	if perr == nil {
		apiErr.Status = status
		return "", apiErr
	}

	return "", &ParseError{
		Status: status,
		Body:   strings.TrimSpace(string(body)),
		Err:    perr,
	}
}

// setHeaders sets common headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// readResponse reads at most MaxResponseSize bytes.
func readResponse(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// logRequest logs method and path only. Headers carry the key.
func (c *Client) logRequest(req *http.Request) {
	c.logger.Debug("openai request",
		"method", req.Method,
		"path", req.URL.Path,
		"model", c.cfg.Model,
		"key", util.Fingerprint(c.cfg.APIKey))
}

// logResponse logs status and duration, never the body.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	c.logger.Debug("openai response", "status", resp.StatusCode, "duration", duration)
}
