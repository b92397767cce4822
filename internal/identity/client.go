// Package identity provides a client for the external identity service that
// owns user accounts and their contact addresses.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/corvohq/helpdesk-ai/pkg/logging"
)

// ErrOwnerNotFound is returned when the identity service has no user for the id
var ErrOwnerNotFound = errors.New("identity: owner not found")

// userResponse is the identity service's user payload, reduced to what we read.
type userResponse struct {
	ID             string `json:"id"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// Client is an HTTP client for the identity service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an identity client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OwnerContact resolves an owner id to their primary email address.
func (c *Client) OwnerContact(ctx context.Context, ownerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s", c.baseURL, url.PathEscape(ownerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: fetch user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrOwnerNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("identity: unexpected status %d: %s", resp.StatusCode, body)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("identity: decode user: %w", err)
	}
	if len(user.EmailAddresses) == 0 || user.EmailAddresses[0].EmailAddress == "" {
		return "", fmt.Errorf("identity: user %s has no email address", ownerID)
	}

	c.logger.Debug("identity: owner contact resolved", "owner_id", ownerID)
	return user.EmailAddresses[0].EmailAddress, nil
}
