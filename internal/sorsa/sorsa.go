// Package sorsa provides a client for the Sorsa social graph API.
// The service answers follow-graph queries for tracked accounts; this
// package centralizes request construction, decoding, and error typing.
package sorsa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Sorsa API endpoint.
const DefaultBaseURL = "https://api.sorsa.io/v2"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Error represents a failed Sorsa API request.
type Error struct {
	Endpoint   string
	Handle     string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sorsa %s for %q failed: %v", e.Endpoint, e.Handle, e.Cause)
	}
	return fmt.Sprintf("sorsa %s for %q returned status %d", e.Endpoint, e.Handle, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client calls the Sorsa graph API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a Client against the production API with the default
// timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// RecentFollows returns the accounts a tracked handle followed during the
// last seven days. A 404 means the handle is not known to the graph service
// and yields an empty result rather than an error.
func (c *Client) RecentFollows(ctx context.Context, signalHandle string) ([]Account, error) {
	endpoint := fmt.Sprintf("%s/new-following-7d?user_handle=%s", c.BaseURL, url.QueryEscape(signalHandle))
	return c.getAccounts(ctx, "new-following-7d", signalHandle, endpoint)
}

// TopFollowers returns the most prominent followers of a handle.
func (c *Client) TopFollowers(ctx context.Context, handle string) ([]Account, error) {
	endpoint := fmt.Sprintf("%s/top-following/%s", c.BaseURL, url.PathEscape(handle))
	return c.getAccounts(ctx, "top-following", handle, endpoint)
}

func (c *Client) getAccounts(ctx context.Context, name, handle, endpoint string) ([]Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Endpoint: name, Handle: handle, Cause: err}
	}
	req.Header.Set("ApiKey", c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Endpoint: name, Handle: handle, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		slog.Warn("handle not known to graph service", "endpoint", name, "handle", handle)
		return []Account{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Endpoint: name, Handle: handle, StatusCode: resp.StatusCode}
	}

	var accounts []Account
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		return nil, &Error{Endpoint: name, Handle: handle, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return accounts, nil
}
