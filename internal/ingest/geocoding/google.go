package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// Google Maps geocoding status codes the pipeline distinguishes.
const (
	okStatus            = "OK"
	requestDeniedStatus = "REQUEST_DENIED"
)

// Result holds structured data from a Google Maps geocoding response.
type Result struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	PlaceID string  `json:"place_id"`
}

// Client wraps the Google Maps Geocoding API.
type Client struct {
	// BaseURL may be overridden for tests; zero value uses the public API.
	BaseURL string

	apiKey     string
	httpClient *http.Client
}

// NewClient creates a geocoding client for the given API key and endpoint.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	PlaceID  string   `json:"place_id"`
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocode converts a free-form address string into coordinates and a place
// id. A REQUEST_DENIED status maps to provider.ErrRequestDenied so callers
// can tell a credential problem apart from an address that simply did not
// resolve.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	base := c.BaseURL
	if base == "" {
		base = provider.DefaultGeocodeURL
	}
	u := fmt.Sprintf("%s?address=%s&key=%s", base, url.QueryEscape(address), c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned HTTP %d", resp.StatusCode)
	}

	var geoResp geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return nil, fmt.Errorf("decoding geocode response: %w", err)
	}

	switch {
	case geoResp.Status == requestDeniedStatus:
		return nil, provider.ErrRequestDenied
	case geoResp.Status != okStatus:
		return nil, fmt.Errorf("geocoding failed: status=%s", geoResp.Status)
	case len(geoResp.Results) == 0:
		return nil, fmt.Errorf("geocoding returned no results for address")
	}

	first := geoResp.Results[0]
	return &Result{
		Lat:     first.Geometry.Location.Lat,
		Lng:     first.Geometry.Location.Lng,
		PlaceID: first.PlaceID,
	}, nil
}
