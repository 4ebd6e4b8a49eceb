package hospitals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/geocoding"
	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

func newFakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	hospitals := []Hospital{
		{Name: "Uniontown Hospital", StreetAddress: "500 W Berkeley St", City: "Uniontown", State: "PA", FIPS: "42051"},
		{Name: "Highlands Hospital", StreetAddress: "401 E Murphy Ave", City: "Connellsville", State: "PA", FIPS: "42051"},
		{Name: "UPMC Presbyterian", StreetAddress: "200 Lothrop St", City: "Pittsburgh", State: "PA", FIPS: "42003"},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != "PA" {
			json.NewEncoder(w).Encode([]Hospital{})
			return
		}
		json.NewEncoder(w).Encode(hospitals)
	}))
}

func newFakeGeocoder(t *testing.T, status string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != "OK" {
			json.NewEncoder(w).Encode(map[string]interface{}{"status": status, "results": []any{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"results": []map[string]interface{}{
				{
					"place_id": "geo-1",
					"geometry": map[string]interface{}{
						"location": map[string]float64{"lat": 39.8971, "lng": -79.7303},
					},
				},
			},
		})
	}))
}

func newAdapter(registryURL, geocodeURL string) *Adapter {
	client := NewClient(provider.Config{HospitalsURL: registryURL})
	return NewAdapter(client, geocoding.NewClient("test-key", geocodeURL))
}

// TestFetch_CountyFilter verifies that a statewide registry response is
// narrowed to the queried county and shaped into records with a
// street-city-state address and geocoded coordinates.
func TestFetch_CountyFilter(t *testing.T) {
	registry := newFakeRegistry(t)
	defer registry.Close()
	geocoder := newFakeGeocoder(t, "OK")
	defer geocoder.Close()

	q := provider.Query{StateCode: "PA", CountyFIPS: "42051"}
	records, err := newAdapter(registry.URL, geocoder.URL).Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 hospitals in county 42051, got %d", len(records))
	}

	first := records[0]
	if first.Name != "Uniontown Hospital" {
		t.Errorf("name = %q", first.Name)
	}
	if first.Address != "500 W Berkeley St, Uniontown, PA" {
		t.Errorf("address = %q, want street, city, state", first.Address)
	}
	if first.Category != "Healthcare" || first.Description != "Hospital" {
		t.Errorf("classification wrong: %+v", first)
	}
	if first.Source != provider.SourceHospitalRegistry {
		t.Errorf("source = %q", first.Source)
	}
	if first.Latitude == nil || *first.Latitude != 39.8971 {
		t.Errorf("latitude = %v, want geocoded value", first.Latitude)
	}
}

// TestFetch_GeocodeFailureKeepsHospital verifies that a hospital whose
// address does not resolve is kept with nil coordinates rather than
// dropped.
func TestFetch_GeocodeFailureKeepsHospital(t *testing.T) {
	registry := newFakeRegistry(t)
	defer registry.Close()
	geocoder := newFakeGeocoder(t, "ZERO_RESULTS")
	defer geocoder.Close()

	q := provider.Query{StateCode: "PA", CountyFIPS: "42051"}
	records, err := newAdapter(registry.URL, geocoder.URL).Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records despite geocoding failures, got %d", len(records))
	}
	for _, r := range records {
		if r.Latitude != nil || r.Longitude != nil {
			t.Errorf("%s: expected nil coordinates, got %v,%v", r.Name, r.Latitude, r.Longitude)
		}
	}
}

// TestFetch_RegistryError verifies that a registry outage surfaces as an
// error so the aggregator can isolate this provider.
func TestFetch_RegistryError(t *testing.T) {
	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer registry.Close()
	geocoder := newFakeGeocoder(t, "OK")
	defer geocoder.Close()

	q := provider.Query{StateCode: "PA", CountyFIPS: "42051"}
	if _, err := newAdapter(registry.URL, geocoder.URL).Fetch(context.Background(), q); err == nil {
		t.Fatal("expected error from a failing registry")
	}
}
