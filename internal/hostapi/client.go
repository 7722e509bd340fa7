// Package hostapi is a typed client for the game's local control API.
//
// Every endpoint of the camera_mount, spectator, overlay and streamer_tools
// families is exposed as a method. Failures come back as one of three error
// types so callers can tell a dead host (*TransportError) from a refusal
// (*StatusError) or a garbled answer (*DecodeError).
package hostapi

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
)

// RequestIDHeader carries a per-request id so host and panel logs line up
const RequestIDHeader = "X-Request-ID"

// maxBodySize bounds how much of a response is read into memory
const maxBodySize = 1 << 20

// Client talks to the host control API
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the host at baseURL. Every request is bounded by timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid host url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid host url: %q", baseURL)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the host address this client targets
func (c *Client) BaseURL() string {
	return c.base.String()
}

// request describes one call against the host
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

// do sends req and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	u := *c.base
	u.Path = c.base.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, &TransportError{Method: req.method, Path: req.path, Err: err}
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.DebugContext(ctx, "host request failed",
			"method", req.method, "path", req.path, "request_id", requestID, "error", err)
		return nil, &TransportError{Method: req.method, Path: req.path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Method: req.method, Path: req.path, Err: err}
	}

	c.logger.DebugContext(ctx, "host request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method: req.method,
			Path:   req.path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	return data, nil
}

// getText issues a GET and returns the body as text
func (c *Client) getText(ctx context.Context, path string) (string, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// postText issues a POST with a plain-text body
func (c *Client) postText(ctx context.Context, path, value string) error {
	_, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        []byte(value),
		contentType: "text/plain",
	})
	return err
}

// decodeJSON unmarshals data into v, wrapping failures as *DecodeError
func decodeJSON(path string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}
