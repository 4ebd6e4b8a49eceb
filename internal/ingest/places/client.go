package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

const (
	okStatus            = "OK"
	zeroResultsStatus   = "ZERO_RESULTS"
	requestDeniedStatus = "REQUEST_DENIED"

	// pageTokenDelay is the wait before following a next_page_token.
	// Google propagates pagination tokens with a short lag; requesting the
	// next page too early returns INVALID_REQUEST.
	pageTokenDelay = 2 * time.Second

	// requestsPerSecond throttles all Places traffic (search and details).
	requestsPerSecond = 10
)

// Client is an HTTP client for the Google Places nearby search and place
// details APIs.
type Client struct {
	apiKey     string
	searchURL  string
	detailsURL string
	httpClient *http.Client
	limiter    *rate.Limiter

	// pageDelay is pageTokenDelay in production; tests zero it.
	pageDelay time.Duration
}

// NewClient creates a new Places API client.
func NewClient(cfg provider.Config) *Client {
	return &Client{
		apiKey:     cfg.GoogleKey,
		searchURL:  cfg.PlacesSearch(),
		detailsURL: cfg.PlaceDetails(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		pageDelay: pageTokenDelay,
	}
}

// NearbySearch fetches all places matching a keyword around a center
// coordinate, following server-supplied pagination tokens until exhausted.
func (c *Client) NearbySearch(ctx context.Context, keyword string, lat, lng float64, radius int) ([]Place, error) {
	var all []Place
	pageToken := ""

	start := time.Now()
	provider.LogRequest("places", "GET", c.searchURL, map[string]interface{}{
		"keyword": keyword,
		"radius":  radius,
	})

	for {
		params := url.Values{}
		params.Set("key", c.apiKey)
		params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
		params.Set("keyword", keyword)
		params.Set("radius", strconv.Itoa(radius))
		if pageToken != "" {
			params.Set("pagetoken", pageToken)
		}

		page, err := c.searchPage(ctx, params)
		if err != nil {
			return nil, err
		}

		switch page.Status {
		case okStatus, zeroResultsStatus:
			// fall through
		case requestDeniedStatus:
			return nil, provider.ErrRequestDenied
		default:
			return nil, fmt.Errorf("places status %s", page.Status)
		}

		for _, r := range page.Results {
			all = append(all, Place{
				Name:       r.Name,
				Address:    r.Vicinity,
				PlaceID:    r.PlaceID,
				PriceLevel: r.PriceLevel,
				Lat:        r.Geometry.Location.Lat,
				Lng:        r.Geometry.Location.Lng,
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken

		// The token is not valid immediately.
		select {
		case <-time.After(c.pageDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	provider.LogResponse("places", http.StatusOK, time.Since(start), len(all))
	return all, nil
}

func (c *Client) searchPage(ctx context.Context, params url.Values) (*nearbyResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullURL := fmt.Sprintf("%s?%s", c.searchURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places status %d", resp.StatusCode)
	}

	var page nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}
	return &page, nil
}

// Website resolves the website field for a place via the details API.
// Places without a website return an empty string, not an error.
func (c *Client) Website(ctx context.Context, placeID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", "website")

	fullURL := fmt.Sprintf("%s?%s", c.detailsURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("place details request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("place details status %d", resp.StatusCode)
	}

	var details detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return "", fmt.Errorf("decode place details: %w", err)
	}

	switch details.Status {
	case okStatus:
		return details.Result.Website, nil
	case requestDeniedStatus:
		return "", provider.ErrRequestDenied
	default:
		return "", fmt.Errorf("place details status %s", details.Status)
	}
}
