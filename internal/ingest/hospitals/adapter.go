package hospitals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/geocoding"
	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

const (
	categoryHealthcare  = "Healthcare"
	descriptionHospital = "Hospital"
)

func init() {
	provider.RegisterProvider(provider.ProviderHospitals, func(cfg provider.Config) (provider.AssetProvider, error) {
		return NewAdapter(NewClient(cfg), geocoding.NewClient(cfg.GoogleKey, cfg.Geocode())), nil
	})
}

// Adapter queries the hospital registry by state, keeps the requested
// county, and geocodes the synthesized addresses since the registry carries
// no coordinates.
type Adapter struct {
	client   *Client
	geocoder *geocoding.Client
}

// NewAdapter creates a hospitals adapter from its two upstream clients.
func NewAdapter(client *Client, geocoder *geocoding.Client) *Adapter {
	return &Adapter{client: client, geocoder: geocoder}
}

func (a *Adapter) Name() string { return "hospitals" }

// Fetch returns the county's hospitals as AssetRecords. Geocoding failures
// leave coordinates nil rather than dropping the hospital; an authorization
// failure stops further geocoding attempts for the batch.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) ([]provider.AssetRecord, error) {
	all, err := a.client.ByState(ctx, q.StateCode)
	if err != nil {
		return nil, fmt.Errorf("fetch hospitals for %s: %w", q.StateCode, err)
	}
	if len(all) == 0 {
		provider.LogDropped("hospitals", "no hospital data for state "+q.StateCode, 0)
		return []provider.AssetRecord{}, nil
	}

	start := time.Now()
	records := []provider.AssetRecord{}
	geocodeDenied := false

	for _, h := range all {
		if h.FIPS != q.CountyFIPS {
			continue
		}

		address := fmt.Sprintf("%s, %s, %s", h.StreetAddress, h.City, h.State)

		var lat, lng *float64
		if !geocodeDenied {
			loc, err := a.geocoder.Geocode(ctx, address)
			switch {
			case errors.Is(err, provider.ErrRequestDenied):
				provider.LogError("hospitals", "geocode", err)
				geocodeDenied = true
			case err != nil:
				provider.LogError("hospitals", "geocode "+h.Name, err)
			default:
				lat, lng = &loc.Lat, &loc.Lng
			}
		}

		records = append(records, provider.AssetRecord{
			Name:        h.Name,
			Category:    categoryHealthcare,
			Description: descriptionHospital,
			Address:     address,
			Latitude:    lat,
			Longitude:   lng,
			Source:      provider.SourceHospitalRegistry,
		})
	}

	provider.LogTransform("hospitals", len(all), len(records), time.Since(start))
	return records, nil
}
