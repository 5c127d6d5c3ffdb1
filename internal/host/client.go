package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/hdhradio/internal/bridge"
)

// DefaultTimeout is the HTTP request timeout for host API calls
const DefaultTimeout = 5 * time.Second

// Client talks to the audio host's control API: temporary source
// registration and the active-routes view.
type Client struct {
	// BaseURL is the host API base (e.g., "http://127.0.0.1:8085")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a host API client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// registerResponse is the host's answer to a source registration.
type registerResponse struct {
	InstanceID string `json:"instance_id"`
}

// RegisterSource registers a temporary source with the host and returns
// the instance ID the host assigned to it.
func (c *Client) RegisterSource(desc bridge.SourceDescription) (string, error) {
	body, err := json.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("failed to encode source description: %w", err)
	}

	resp, err := c.HTTPClient.Post(c.BaseURL+"/api/sources", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("source registration failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("source registration returned status %d", resp.StatusCode)
	}

	var reg registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return "", fmt.Errorf("failed to decode registration response: %w", err)
	}
	if reg.InstanceID == "" {
		return "", fmt.Errorf("host returned empty instance ID")
	}

	return reg.InstanceID, nil
}

// UnregisterSource removes a previously registered temporary source.
func (c *Client) UnregisterSource(instanceID string) error {
	req, err := http.NewRequest(http.MethodDelete,
		c.BaseURL+"/api/sources/"+url.PathEscape(instanceID), nil)
	if err != nil {
		return fmt.Errorf("failed to create unregister request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("source unregistration failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("source unregistration returned status %d", resp.StatusCode)
	}
	return nil
}

// ActiveRoutes queries the host's active-routes view.
//
// Transport errors and non-200 responses are returned as errors; the
// reconciler treats them as "no change" rather than clearing sessions.
func (c *Client) ActiveRoutes(ctx context.Context) ([]bridge.Route, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/routes", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create routes request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routes query failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routes query returned status %d", resp.StatusCode)
	}

	var routes []bridge.Route
	if err := json.NewDecoder(resp.Body).Decode(&routes); err != nil {
		return nil, fmt.Errorf("failed to decode routes response: %w", err)
	}
	return routes, nil
}
