package places

import (
	"context"
	"errors"
	"time"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// maxPriceLevel excludes priced venues. Civic assets are free or close to
// it; a price_level of 1+ marks restaurants, bars and stores that slip into
// keyword results.
const maxPriceLevel = 1

func init() {
	provider.RegisterProvider(provider.ProviderPlaces, func(cfg provider.Config) (provider.AssetProvider, error) {
		return &Adapter{client: NewClient(cfg)}, nil
	})
}

// Adapter searches the Google Places API with a community's keyword list and
// normalizes the results into AssetRecords.
type Adapter struct {
	client *Client
}

// NewAdapter creates a places adapter with a prebuilt client (used by tests).
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string { return "places" }

// Fetch runs one nearby search per (category, keyword) pair and resolves a
// website for each retained result. An authorization failure aborts the
// remaining keywords but still returns what was collected; transient
// failures skip just the keyword at hand.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) ([]provider.AssetRecord, error) {
	records := []provider.AssetRecord{}
	dropped := 0

	start := time.Now()

	for _, kw := range q.Keywords {
		results, err := a.client.NearbySearch(ctx, kw.Keyword, q.Latitude, q.Longitude, q.Radius)
		if err != nil {
			provider.LogError("places", "search "+kw.Keyword, err)
			if errors.Is(err, provider.ErrRequestDenied) {
				// Every remaining keyword would fail the same way.
				break
			}
			continue
		}

		for _, place := range results {
			if place.PriceLevel != nil && *place.PriceLevel >= maxPriceLevel {
				dropped++
				continue
			}

			website := ""
			if place.PlaceID != "" {
				website, err = a.client.Website(ctx, place.PlaceID)
				if err != nil {
					provider.LogError("places", "website "+place.PlaceID, err)
					website = ""
				}
			}

			lat, lng := place.Lat, place.Lng
			records = append(records, provider.AssetRecord{
				Name:      place.Name,
				Category:  kw.Category,
				Address:   place.Address,
				Latitude:  &lat,
				Longitude: &lng,
				Website:   website,
				Source:    provider.SourceGooglePlaces,
			})
		}
	}

	provider.LogDropped("places", "price_level at or above commercial threshold", dropped)
	provider.LogTransform("places", len(records)+dropped, len(records), time.Since(start))
	return records, nil
}
