package schools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// School is one feature from an NCES EDGE feed after renaming the
// feed-specific attribute names to the common shape.
type School struct {
	Name   string
	Street string
	City   string
	Lat    float64
	Lng    float64
}

// Client queries the three NCES EDGE school location feature services.
type Client struct {
	privateURL string
	publicURL  string
	postSecURL string
	httpClient *http.Client
}

// NewClient creates a new school feeds client.
func NewClient(cfg provider.Config) *Client {
	return &Client{
		privateURL: cfg.PrivateSchool(),
		publicURL:  cfg.PublicSchool(),
		postSecURL: cfg.PostSec(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Attribute shapes differ per feed: the geocode feeds (private,
// postsecondary) use NAME/STREET/CITY/LAT/LON, the public-school
// administrative feed uses SCH_NAME/LSTREET1/LCITY/LATCOD/LONCOD.

type geocodeAttrs struct {
	Name   string  `json:"NAME"`
	Street string  `json:"STREET"`
	City   string  `json:"CITY"`
	Lat    float64 `json:"LAT"`
	Lng    float64 `json:"LON"`
}

type adminAttrs struct {
	Name   string  `json:"SCH_NAME"`
	Street string  `json:"LSTREET1"`
	City   string  `json:"LCITY"`
	Lat    float64 `json:"LATCOD"`
	Lng    float64 `json:"LONCOD"`
}

type featureResponse[A any] struct {
	Features []struct {
		Attributes A `json:"attributes"`
	} `json:"features"`
}

// Private fetches private school locations for a county FIPS code.
func (c *Client) Private(ctx context.Context, countyFIPS string) ([]School, error) {
	where := fmt.Sprintf("CNTY = '%s'", countyFIPS)
	return c.geocodeQuery(ctx, "private", c.privateURL, where)
}

// PostSecondary fetches postsecondary institution locations for a county
// FIPS code.
func (c *Client) PostSecondary(ctx context.Context, countyFIPS string) ([]School, error) {
	where := fmt.Sprintf("CNTY = '%s'", countyFIPS)
	return c.geocodeQuery(ctx, "postsecondary", c.postSecURL, where)
}

// Public fetches public school locations for a state code and county name.
// The public feed is keyed by county name, not FIPS.
func (c *Client) Public(ctx context.Context, stateCode, countyName string) ([]School, error) {
	where := fmt.Sprintf("STABR = '%s' AND NMCNTY = '%s'", stateCode, countyName)

	start := time.Now()
	var page featureResponse[adminAttrs]
	if err := c.query(ctx, "public", c.publicURL, where, "SCH_NAME,LSTREET1,LCITY,LATCOD,LONCOD", &page); err != nil {
		return nil, err
	}

	schools := make([]School, 0, len(page.Features))
	for _, f := range page.Features {
		a := f.Attributes
		schools = append(schools, School{Name: a.Name, Street: a.Street, City: a.City, Lat: a.Lat, Lng: a.Lng})
	}
	provider.LogResponse("schools", http.StatusOK, time.Since(start), len(schools))
	return schools, nil
}

func (c *Client) geocodeQuery(ctx context.Context, feed, baseURL, where string) ([]School, error) {
	start := time.Now()
	var page featureResponse[geocodeAttrs]
	if err := c.query(ctx, feed, baseURL, where, "NAME,STREET,CITY,LAT,LON", &page); err != nil {
		return nil, err
	}

	schools := make([]School, 0, len(page.Features))
	for _, f := range page.Features {
		a := f.Attributes
		schools = append(schools, School{Name: a.Name, Street: a.Street, City: a.City, Lat: a.Lat, Lng: a.Lng})
	}
	provider.LogResponse("schools", http.StatusOK, time.Since(start), len(schools))
	return schools, nil
}

func (c *Client) query(ctx context.Context, feed, baseURL, where, outFields string, dst any) error {
	params := url.Values{}
	params.Set("where", where)
	params.Set("outFields", outFields)
	params.Set("outSR", "4326")
	params.Set("f", "json")

	fullURL := fmt.Sprintf("%s/query?%s", baseURL, params.Encode())

	provider.LogRequest("schools", "GET", baseURL, map[string]interface{}{
		"feed":  feed,
		"where": where,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s schools request: %w", feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s schools status %d", feed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s schools response: %w", feed, err)
	}
	return nil
}
