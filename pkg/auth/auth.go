// Package auth implements the HTTP login exchange that yields the
// bearer token presented over the websocket session.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is the public token endpoint.
const DefaultEndpoint = "https://auth.lightwaverf.com/v2/lightwaverf/autouserlogin/lwapps"

// clientVersion is pinned: the endpoint rejects requests that do not
// present a known app version.
const clientVersion = "1.6.6"

// Token exchange errors.
var (
	ErrUnauthorized = errors.New("invalid credentials")
	ErrNoToken      = errors.New("response carried no access token")
)

// Config configures the token exchange.
type Config struct {
	// Endpoint is the token URL (default: DefaultEndpoint).
	Endpoint string

	// HTTPClient performs the request (default: client with a 30s
	// timeout).
	HTTPClient *http.Client
}

// Client obtains access tokens from the auth endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a token client.
func NewClient(config Config) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint:   config.Endpoint,
		httpClient: config.HTTPClient,
	}
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Version  string `json:"version"`
}

type tokenResponse struct {
	Tokens struct {
		AccessToken string `json:"access_token"`
	} `json:"tokens"`
}

// RequestToken exchanges account credentials for a bearer token. There
// are no retries; a failure here is fatal to startup.
func (c *Client) RequestToken(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(tokenRequest{
		Email:    email,
		Password: password,
		Version:  clientVersion,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	// The endpoint serves the mobile apps and keys on these headers.
	req.Header.Set("x-lwrf-platform", "ios")
	req.Header.Set("x-lwrf-appid", "ios-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("token request failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if parsed.Tokens.AccessToken == "" {
		return "", ErrNoToken
	}
	return parsed.Tokens.AccessToken, nil
}
