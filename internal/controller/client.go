package controller

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/tadosync/internal/infrastructure/config"
)

// maxErrorBodySize limits how much of an error response body is retained
// for logging.
const maxErrorBodySize = 4096

// Client issues authenticated HTTP requests to the local thermostat
// controller.
//
// Two underlying http.Clients are used: a request client with a short total
// timeout for polling and commands, and a stream client with a short connect
// timeout but no total deadline so the event stream can run indefinitely.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	baseURL string
	token   string

	rest   *http.Client
	stream *http.Client
}

// New creates a controller client from configuration.
func New(cfg config.ControllerConfig) *Client {
	requestTimeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	connectTimeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second

	// The stream transport bounds connection establishment only; the
	// response body is read for the lifetime of the connection.
	streamTransport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: connectTimeout,
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		rest: &http.Client{
			Timeout: requestTimeout,
		},
		stream: &http.Client{
			Transport: streamTransport,
		},
	}
}

// Get issues an authenticated GET request.
//
// Non-2xx responses are not errors: the status code and body are returned
// for the caller to branch on. An error is returned only for network-level
// failures, wrapped in ErrTransport.
func (c *Client) Get(ctx context.Context, path string) (int, []byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.rest.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	return resp.StatusCode, body, nil
}

// Post issues an authenticated POST request with no body.
//
// The controller's command endpoints carry their parameters in the query
// string. As with Get, non-2xx statuses are returned, not raised.
func (c *Client) Post(ctx context.Context, path string) (int, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path)
	if err != nil {
		return 0, err
	}

	resp, err := c.rest.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))

	return resp.StatusCode, nil
}

// Stream opens a long-lived streaming GET request.
//
// The returned body has no read deadline; it stays open until the server
// closes the connection or ctx is cancelled. A non-200 response is closed
// and returned as a *StatusError.
func (c *Client) Stream(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		resp.Body.Close()
		return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	return resp.Body, nil
}

// newRequest builds a request with the bearer token attached.
func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("controller: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}
