// Package workflow holds the HTTP clients for the external webhook backends
// that generate, merge and publish videos. Every call is bounded by a
// configured timeout; the upstream workflows impose none of their own.
package workflow

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
)

// Config configures the backend client.
type Config struct {
	BaseURL         string
	ScriptTimeout   time.Duration
	GenerateTimeout time.Duration
	MergeTimeout    time.Duration
	PublishTimeout  time.Duration
}

// Client calls the webhook backends.
type Client struct {
	baseURL  string
	script   *http.Client
	generate *http.Client
	merge    *http.Client
	publish  *http.Client
}

// NewClient validates the base URL and builds a client with one bounded
// http.Client per call class.
func NewClient(cfg *Config) (*Client, error) {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("workflow base URL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid workflow base URL: %w", err)
	}

	return &Client{
		baseURL:  base,
		script:   &http.Client{Timeout: orDefault(cfg.ScriptTimeout, 60*time.Second)},
		generate: &http.Client{Timeout: orDefault(cfg.GenerateTimeout, 120*time.Second)},
		merge:    &http.Client{Timeout: orDefault(cfg.MergeTimeout, 300*time.Second)},
		publish:  &http.Client{Timeout: orDefault(cfg.PublishTimeout, 60*time.Second)},
	}, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// endpoint builds the webhook URL for a backend path.
func (c *Client) endpoint(path string) string {
	return c.baseURL + "/webhook/" + path
}

// postJSON sends a JSON request and returns the response body after checking
// the status code. A nil payload sends an empty body.
func (c *Client) postJSON(ctx context.Context, hc *http.Client, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(hc, req)
}

// do executes a prepared request and checks for a 2xx status.
func (c *Client) do(hc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	return data, nil
}

// maxResponseBytes caps backend responses; everything we expect back is a
// small JSON document.
const maxResponseBytes = 4 << 20
