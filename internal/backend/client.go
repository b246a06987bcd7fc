// Package backend is the HTTP client for the parking REST API the dashboard
// consumes. The API itself is an external collaborator; this package only
// shapes requests and decodes the documented envelopes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/model"
)

// TokenFunc supplies the current bearer token, or "" when the user is not
// signed in. Unauthenticated requests are still valid for read endpoints.
type TokenFunc func() string

// Client talks to the parking backend.
type Client struct {
	baseURL string
	client  *http.Client
	token   TokenFunc
}

// New creates a backend client. token may be nil.
func New(cfg config.BackendConfig, token TokenFunc) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		token: token,
	}
}

// NearbyLots fetches lots around center within radiusMeters. The server does
// the spatial filtering and supplies per-lot distances.
func (c *Client) NearbyLots(ctx context.Context, center model.Coordinates, radiusMeters int) ([]model.ParkingLot, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", center.Latitude))
	q.Set("lng", fmt.Sprintf("%f", center.Longitude))
	q.Set("radius", strconv.Itoa(radiusMeters))
	return c.fetchLots(ctx, "/api/parkinglots?"+q.Encode())
}

// AllLots fetches the unfiltered lot list used for map markers and area
// derivation.
func (c *Client) AllLots(ctx context.Context) ([]model.ParkingLot, error) {
	return c.fetchLots(ctx, "/api/parkinglots/all")
}

// SearchLots runs a lot-name search and returns at most limit results.
func (c *Client) SearchLots(ctx context.Context, query string, limit int) ([]model.ParkingLot, error) {
	q := url.Values{}
	q.Set("q", query)
	lots, err := c.fetchLots(ctx, "/api/parkinglots/search?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(lots) > limit {
		lots = lots[:limit]
	}
	return lots, nil
}

// Book submits a booking for the given lot and hour (0-23). A non-2xx reply
// is returned as an *APIError carrying the server's message.
func (c *Client) Book(ctx context.Context, lotID string, hour int) error {
	payload, err := json.Marshal(map[string]int{"hour": hour})
	if err != nil {
		return fmt.Errorf("failed to marshal booking payload: %w", err)
	}

	u := fmt.Sprintf("%s/api/parkinglots/%s/book", c.baseURL, url.PathEscape(lotID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("booking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) fetchLots(ctx context.Context, path string) ([]model.ParkingLot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope lotsResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lot list: %w", err)
	}
	return envelope.ParkingLots, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token == nil {
		return
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		_ = json.Unmarshal(body, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("parking service returned status %d", resp.StatusCode)
	}
	return apiErr
}
