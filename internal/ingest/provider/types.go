package provider

import (
	"time"

	"github.com/google/uuid"
)

// Source labels as they appear in the sources master table. Adapters stamp
// these onto every record they produce; the reconciler validates them.
const (
	SourceGooglePlaces     = "Google API"
	SourceHospitalRegistry = "Community Benefit Hospitals API"
	SourceSchoolsFeed      = "NCES Common Core of Data API"
)

// Asset types. All current providers yield tangible (physical) assets;
// intangible assets enter the system through other channels.
const (
	TangibleAsset   = "Tangible"
	IntangibleAsset = "Intangible"
)

// Lifecycle status of a persisted asset. Freshly ingested assets are valid;
// the other transitions belong to the review endpoints, not this pipeline.
const (
	StatusValid     = 0
	StatusMissing   = 1
	StatusSuggested = 2
)

// AssetRecord represents a civic asset from any data provider in a common
// format. This is the intermediate representation between provider-specific
// API responses and our database models. Community fields, asset type,
// timestamp, status and the deterministic ID are applied by the pipeline
// after aggregation; adapters leave them zero.
type AssetRecord struct {
	ID uuid.UUID `json:"id"`

	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Address     string `json:"address"`

	// Coordinates are nil when the upstream source does not supply them
	// and geocoding failed or has not run.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Website string `json:"website"`

	// Source tracking: one of the Source* labels above.
	Source string `json:"source"`

	// Community linkage, applied per run.
	CommunityName  string `json:"com_name"`
	CommunityGeoID int    `json:"com_geo_id"`

	AssetType string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
}

// HasCoordinates reports whether both coordinates are present.
func (r *AssetRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// CategoryKeyword is one line of a community keyword file: the master
// category the results belong to and the term sent to the place search.
type CategoryKeyword struct {
	Category string
	Keyword  string
}

// Query describes one community's geographic search, fanned out to every
// provider. Each adapter uses the subset of fields relevant to its upstream.
type Query struct {
	StateCode  string
	CountyFIPS string
	CountyName string

	Latitude  float64
	Longitude float64
	Radius    int

	Keywords []CategoryKeyword
}
