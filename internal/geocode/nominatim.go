// Package geocode wraps the OSM Nominatim search endpoint. Requests are
// rate-limited and cached; the public instance enforces both.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/geo"
	"parkview-dashboard/internal/model"
)

// Place is a single geocoder hit, normalized for the suggestion list.
type Place struct {
	PlaceID     int64             `json:"placeId"`
	DisplayName string            `json:"displayName"`
	City        string            `json:"city"`
	Position    model.Coordinates `json:"position"`
}

// nominatimResult mirrors the relevant parts of the jsonv2 search payload.
// Nominatim serializes coordinates as strings.
type nominatimResult struct {
	PlaceID     int64            `json:"place_id"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
}

// Client is a rate-limited, caching Nominatim search client.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	cache     *cache.Cache
}

// New creates a geocoder client from configuration.
func New(cfg config.GeocoderConfig) *Client {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Search geocodes a free-text query, returning at most limit places. When a
// viewport is given the search is biased to it and bounded inside it.
func (c *Client) Search(ctx context.Context, query string, limit int, viewport *geo.BoundingBox) ([]Place, error) {
	key := cacheKey(query, limit, viewport)
	if cached, found := c.cache.Get(key); found {
		return cached.([]Place), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("q", query)
	if viewport != nil {
		params.Set("viewbox", viewport.Viewbox())
		params.Set("bounded", "1")
	}

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder payload: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		places = append(places, Place{
			PlaceID:     r.PlaceID,
			DisplayName: r.DisplayName,
			City:        pickCity(r.Address),
			Position:    model.Coordinates{Latitude: lat, Longitude: lon},
		})
	}

	c.cache.Set(key, places, cache.DefaultExpiration)
	return places, nil
}

func cacheKey(query string, limit int, viewport *geo.BoundingBox) string {
	if viewport == nil {
		return fmt.Sprintf("%s|%d", query, limit)
	}
	return fmt.Sprintf("%s|%d|%s", query, limit, viewport.Viewbox())
}

// pickCity selects the best available locality name from the address detail.
func pickCity(a nominatimAddress) string {
	if a.City != "" {
		return a.City
	}
	if a.Town != "" {
		return a.Town
	}
	if a.Village != "" {
		return a.Village
	}
	return a.Municipality
}
