// Package remote talks to a Specular store over its HTTP API.
package remote

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

	"github.com/Project-Sylos/Specular/internal/types"
)

var (
	// ErrNotFound is returned for HTTP 404
	ErrNotFound = errors.New("remote: not found")
	// ErrPermissionDenied is returned for HTTP 401 and 403
	ErrPermissionDenied = errors.New("remote: permission denied")
)

// maxBody bounds how much of a response body is read
const maxBody = 64 << 20

// Client provides listing and export against a store's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// Config holds client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	AuthToken string
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		authToken: cfg.AuthToken,
	}
}

// apiResponse mirrors types.APIResponse with a deferred payload
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// List returns one page of the children of a container.
func (c *Client) List(ctx context.Context, req types.ListRequest) (*types.ListResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/api/v1/items/list", body)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("list %s failed: %s", req.ContainerID, resp.Message)
	}

	var result types.ListResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode list result: %w", err)
	}
	return &result, nil
}

// ExportAsMarkup fetches the Markdown export of a document.
func (c *Client) ExportAsMarkup(ctx context.Context, id string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/items/"+url.PathEscape(id)+"/export?format=markdown", nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchRaw fetches the stored bytes of a file.
func (c *Client) FetchRaw(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/items/"+url.PathEscape(id)+"/raw", nil)
}

// do sends a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	msg := strings.TrimSpace(string(data))
	var ar apiResponse
	if json.Unmarshal(data, &ar) == nil && ar.Message != "" {
		msg = ar.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
	}
	return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
}
