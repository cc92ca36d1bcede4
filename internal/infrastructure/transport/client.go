package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"HelpsResolver/internal/ports"
)

const defaultUserAgent = "HelpsResolver/1.0"

// BodyError is a failure to read a response that was already received.
type BodyError struct {
	Status int
	Err    error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("read body (status %d): %v", e.Status, e.Err)
}

func (e *BodyError) Unwrap() error { return e.Err }

// StatusCode reports the status of the response whose body failed.
func (e *BodyError) StatusCode() int { return e.Status }

// Client implements ports.Transport on net/http.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

var _ ports.Transport = (*Client)(nil)

// NewClient wires an HTTP client; the client carries no timeout of its own,
// timeouts come per request from ports.RequestConfig.
func NewClient(client *http.Client, log *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{http: client, logger: log}
}

// Get fetches url. Any received response is returned whatever its status.
func (c *Client) Get(ctx context.Context, url string, cfg ports.RequestConfig) (ports.Response, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.Response{}, fmt.Errorf("build request: %w", err)
	}
	for key, values := range cfg.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	c.debug("http get", "url", url, "timeout", cfg.Timeout)

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.Response{}, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.Response{}, &BodyError{Status: resp.StatusCode, Err: err}
	}

	c.debug("http response", "url", url, "status", resp.StatusCode, "bytes", len(body))
	return ports.Response{Status: resp.StatusCode, Data: string(body)}, nil
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
