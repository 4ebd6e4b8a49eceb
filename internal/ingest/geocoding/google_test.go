package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

func newServer(t *testing.T, status string, results []map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "" {
			t.Error("request missing address parameter")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"results": results,
		})
	}))
}

func TestGeocode(t *testing.T) {
	srv := newServer(t, "OK", []map[string]interface{}{
		{
			"place_id": "test-place",
			"geometry": map[string]interface{}{
				"location": map[string]float64{"lat": 39.8993, "lng": -79.7245},
			},
		},
	})
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	got, err := client.Geocode(context.Background(), "24 Jefferson St, Uniontown, PA")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if got.Lat != 39.8993 || got.Lng != -79.7245 {
		t.Errorf("coordinates = %v,%v", got.Lat, got.Lng)
	}
	if got.PlaceID != "test-place" {
		t.Errorf("place id = %q", got.PlaceID)
	}
}

// TestGeocode_RequestDenied verifies the credential-failure sentinel, which
// callers use to stop geocoding a whole batch instead of failing address by
// address.
func TestGeocode_RequestDenied(t *testing.T) {
	srv := newServer(t, "REQUEST_DENIED", nil)
	defer srv.Close()

	client := NewClient("bad-key", srv.URL)
	_, err := client.Geocode(context.Background(), "anywhere")
	if !errors.Is(err, provider.ErrRequestDenied) {
		t.Fatalf("expected ErrRequestDenied, got %v", err)
	}
}

func TestGeocode_NoResults(t *testing.T) {
	srv := newServer(t, "ZERO_RESULTS", nil)
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	if _, err := client.Geocode(context.Background(), "nowhere at all"); err == nil {
		t.Fatal("expected error for unresolvable address")
	}
}
