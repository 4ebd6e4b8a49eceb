package provider

import (
	"os"
	"strings"
)

// ProviderType identifies one upstream data provider.
type ProviderType string

const (
	ProviderPlaces    ProviderType = "places"
	ProviderHospitals ProviderType = "hospitals"
	ProviderSchools   ProviderType = "schools"
)

// Default upstream endpoints. Tests point these at local servers.
const (
	DefaultPlacesSearchURL  = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	DefaultPlaceDetailsURL  = "https://maps.googleapis.com/maps/api/place/details/json"
	DefaultGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultHospitalsURL     = "https://www.communitybenefitinsight.org/api/get_hospitals.php"
	DefaultPrivateSchoolURL = "https://nces.ed.gov/opengis/rest/services/K12_School_Locations/EDGE_GEOCODE_PRIVATESCH_1920/MapServer/0"
	DefaultPublicSchoolURL  = "https://nces.ed.gov/opengis/rest/services/K12_School_Locations/EDGE_ADMINDATA_PUBLICSCH_1920/MapServer/0"
	DefaultPostSecURL       = "https://services1.arcgis.com/Ua5sjt3LWTPigjyD/arcgis/rest/services/Postsecondary_School_Locations_Current/FeatureServer/0"
)

// Config holds configuration for the upstream data providers.
type Config struct {
	// GoogleKey authorizes the Places search, place details, and geocoding
	// calls. Required.
	GoogleKey string

	// Endpoint overrides; empty fields fall back to the defaults above.
	PlacesSearchURL  string
	PlaceDetailsURL  string
	GeocodeURL       string
	HospitalsURL     string
	PrivateSchoolURL string
	PublicSchoolURL  string
	PostSecURL       string
}

// LoadFromEnv loads provider configuration from environment variables.
//
// Environment variables:
//   - GOOGLE_API_KEY: API key for the Google Maps platform (required)
//   - HOSPITALS_API_URL: override for the hospital registry endpoint
func LoadFromEnv() Config {
	return Config{
		GoogleKey:    strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		HospitalsURL: strings.TrimSpace(os.Getenv("HOSPITALS_API_URL")),
	}
}

// Validate checks that the configuration can serve every provider.
func (c Config) Validate() error {
	if c.GoogleKey == "" {
		return ErrMissingGoogleKey
	}
	return nil
}

// orDefault returns v, or def when v is empty.
func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Endpoint accessors applying defaults.

func (c Config) PlacesSearch() string  { return orDefault(c.PlacesSearchURL, DefaultPlacesSearchURL) }
func (c Config) PlaceDetails() string  { return orDefault(c.PlaceDetailsURL, DefaultPlaceDetailsURL) }
func (c Config) Geocode() string       { return orDefault(c.GeocodeURL, DefaultGeocodeURL) }
func (c Config) Hospitals() string     { return orDefault(c.HospitalsURL, DefaultHospitalsURL) }
func (c Config) PrivateSchool() string { return orDefault(c.PrivateSchoolURL, DefaultPrivateSchoolURL) }
func (c Config) PublicSchool() string  { return orDefault(c.PublicSchoolURL, DefaultPublicSchoolURL) }
func (c Config) PostSec() string       { return orDefault(c.PostSecURL, DefaultPostSecURL) }
