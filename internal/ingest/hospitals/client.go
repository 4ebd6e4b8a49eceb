package hospitals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// Hospital is one row from the Community Benefit Insight registry. The
// registry keys counties by a combined state+county FIPS code and does not
// supply coordinates.
type Hospital struct {
	Name          string `json:"name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	FIPS          string `json:"fips_state_and_county_code"`
}

// Client is an HTTP client for the Community Benefit Insight hospital API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new hospital registry client.
func NewClient(cfg provider.Config) *Client {
	return &Client{
		baseURL: cfg.Hospitals(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ByState fetches every registered hospital in a state. The registry has no
// county parameter; callers filter by FIPS client-side.
func (c *Client) ByState(ctx context.Context, stateCode string) ([]Hospital, error) {
	fullURL := fmt.Sprintf("%s?state=%s", c.baseURL, url.QueryEscape(stateCode))

	start := time.Now()
	provider.LogRequest("hospitals", "GET", c.baseURL, map[string]interface{}{
		"state": stateCode,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hospitals request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hospitals status %d", resp.StatusCode)
	}

	var all []Hospital
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("decode hospitals response: %w", err)
	}

	provider.LogResponse("hospitals", resp.StatusCode, time.Since(start), len(all))
	return all, nil
}
