package provider

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrMissingGoogleKey = errors.New("GOOGLE_API_KEY environment variable is required for the places and hospitals providers")
	ErrUnknownProvider  = errors.New("unknown provider type")

	// ErrRequestDenied marks an upstream authorization failure (bad or
	// disabled API key), so callers can distinguish "no data" from
	// "misconfigured credentials".
	ErrRequestDenied = errors.New("upstream request denied: check the Google API key")
)

// AssetProvider is the interface that all asset data providers must
// implement. It abstracts the differences between the Google Places search,
// the hospital registry, the NCES school feeds, and any future providers.
type AssetProvider interface {
	// Name returns the provider name for logging purposes.
	Name() string

	// Fetch returns zero or more records for the query. An empty upstream
	// result is not an error; adapters return an empty slice instead.
	Fetch(ctx context.Context, q Query) ([]AssetRecord, error)
}

// providerRegistry holds registered provider constructors.
// This allows new providers to be registered without modifying this file.
var providerRegistry = make(map[ProviderType]func(Config) (AssetProvider, error))

// RegisterProvider registers a provider constructor for a given provider
// type. This should be called from init() in each provider package.
func RegisterProvider(providerType ProviderType, constructor func(Config) (AssetProvider, error)) {
	providerRegistry[providerType] = constructor
}

// NewProvider creates a new AssetProvider based on the configuration.
func NewProvider(providerType ProviderType, cfg Config) (AssetProvider, error) {
	constructor, ok := providerRegistry[providerType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerType)
	}
	return constructor(cfg)
}

// AllProviderTypes lists the providers a full pipeline run fans out to, in
// fixed order.
var AllProviderTypes = []ProviderType{ProviderPlaces, ProviderHospitals, ProviderSchools}

// NewAll constructs every provider in AllProviderTypes. The configuration
// must already be validated.
func NewAll(cfg Config) ([]AssetProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	providers := make([]AssetProvider, 0, len(AllProviderTypes))
	for _, t := range AllProviderTypes {
		p, err := NewProvider(t, cfg)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
