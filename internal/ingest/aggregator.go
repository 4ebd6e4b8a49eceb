package ingest

import (
	"context"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// Aggregator fans one community query out to every provider and
// concatenates their record sets. It preserves every record it receives:
// de-duplication and validation are later stages.
type Aggregator struct {
	providers []provider.AssetProvider
}

// NewAggregator creates an aggregator over the given providers, queried in
// the order passed.
func NewAggregator(providers ...provider.AssetProvider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Fetch queries each provider sequentially and concatenates the results.
// A failing provider is logged and contributes nothing; it never aborts
// its siblings.
func (a *Aggregator) Fetch(ctx context.Context, q provider.Query) []provider.AssetRecord {
	var all []provider.AssetRecord

	for _, p := range a.providers {
		records, err := p.Fetch(ctx, q)
		if err != nil {
			provider.LogError(p.Name(), "fetch", err)
			continue
		}
		all = append(all, records...)
	}

	return all
}
