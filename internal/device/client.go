// Package device is the REST client for the monitoring device's alert API.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alertdeck/alertdeck/internal/alerts"
)

const defaultTimeout = 10 * time.Second

// Client talks to the device's REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for a device base URL (e.g. "http://device:9000").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// AlertListResponse is the body of GET /alerts and GET /alerts/active.
type AlertListResponse struct {
	Alerts []alerts.Record `json:"alerts"`
	Count  int             `json:"count"`
}

// SummaryResponse is the body of GET /alerts/summary.
type SummaryResponse struct {
	Total      int            `json:"total"`
	ByState    map[string]int `json:"byState"`
	BySeverity map[string]int `json:"bySeverity"`
}

// ListAlerts fetches the full alert snapshot.
func (c *Client) ListAlerts(ctx context.Context) ([]alerts.Record, error) {
	var resp AlertListResponse
	if err := c.get(ctx, "/alerts", &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// ActiveAlerts fetches only currently active alerts.
func (c *Client) ActiveAlerts(ctx context.Context) ([]alerts.Record, error) {
	var resp AlertListResponse
	if err := c.get(ctx, "/alerts/active", &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// Summary fetches the device's own aggregate counts.
func (c *Client) Summary(ctx context.Context) (*SummaryResponse, error) {
	var resp SummaryResponse
	if err := c.get(ctx, "/alerts/summary", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Acknowledge marks an alert acknowledged on the device. The device
// identifies alerts by the raw three-field identity, not the derived key.
func (c *Client) Acknowledge(ctx context.Context, identity alerts.IdentityPayload) error {
	return c.post(ctx, "/alerts/acknowledge", identity)
}

// Clear clears an alert on the device.
func (c *Client) Clear(ctx context.Context, identity alerts.IdentityPayload) error {
	return c.post(ctx, "/alerts/clear", identity)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
