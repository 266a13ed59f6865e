// Package digitalocean implements the slice of the DigitalOcean v2 API the
// gateway provisioner needs: droplet create and status plus the region,
// image and SSH key listings. It is deliberately not a full SDK; responses
// are decoded into typed structs and handed back as-is, and API failures
// preserve the provider's own error id and message so the operator sees
// exactly what DigitalOcean reported.
//
// The package does no logging and no retrying; callers decide how to react
// to failures.
package digitalocean

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultEndpoint is the public DigitalOcean API endpoint.
const DefaultEndpoint = "https://api.digitalocean.com"

const requestTimeout = 30 * time.Second

// Client is a minimal DigitalOcean API client for droplet provisioning.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client authenticating with the given API token.
func NewClient(token string) *Client {
	return NewClientWithEndpoint(token, DefaultEndpoint)
}

// NewClientWithEndpoint creates a client against a custom endpoint (for testing).
func NewClientWithEndpoint(token, endpoint string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = requestTimeout

	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// newRequest builds a request for the given API path: a GET when payload is
// nil, otherwise a POST carrying the payload as JSON. The bearer token is
// attached by the oauth2 transport.
func (c *Client) newRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	if payload == nil {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// do executes the request and decodes the response body into out. The API
// reports success as 200 for reads and 202 for droplet creation; any other
// status carries an {id, message} error document which becomes an *Error.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil {
			return fmt.Errorf("parse error response (status %d): %w", resp.StatusCode, err)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}

	return nil
}
