package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// TestArtifactRoundTrip verifies that a batch written to a TSV artifact
// reads back identically, including records without coordinates.
func TestArtifactRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	batch := []provider.AssetRecord{
		{
			ID:             uuid.MustParse("3f2a1b44-9c1d-4e8f-8a31-6b2d7c08e1f5"),
			Name:           "Uniontown Public Library",
			Category:       "Culture and history",
			Description:    "Library",
			Address:        "24 Jefferson St, Uniontown, PA",
			Latitude:       ptr(39.8993),
			Longitude:      ptr(-79.7245),
			Website:        "https://uniontownlib.example.org",
			Source:         provider.SourceGooglePlaces,
			CommunityName:  "Uniontown",
			CommunityGeoID: 4278528,
			AssetType:      provider.TangibleAsset,
			Timestamp:      ts,
			Status:         provider.StatusValid,
		},
		{
			ID:             uuid.MustParse("b1e7c9d2-5a4f-4c3b-9e8d-0f6a2b1c7d44"),
			Name:           "Grace Food Pantry",
			Category:       "Food access",
			Address:        "12 Oak St, Uniontown, PA",
			Source:         provider.SourceHospitalRegistry,
			CommunityName:  "Uniontown",
			CommunityGeoID: 4278528,
			AssetType:      provider.TangibleAsset,
			Timestamp:      ts,
			Status:         provider.StatusValid,
		},
	}

	path := filepath.Join(t.TempDir(), "assets_4278528.tsv")
	if err := WriteArtifact(path, batch); err != nil {
		t.Fatalf("WriteArtifact failed: %v", err)
	}

	got, err := ReadArtifact(path)
	if err != nil {
		t.Fatalf("ReadArtifact failed: %v", err)
	}
	if len(got) != len(batch) {
		t.Fatalf("read %d records, wrote %d", len(got), len(batch))
	}

	for i := range batch {
		want, have := batch[i], got[i]
		if have.ID != want.ID || have.Name != want.Name || have.Category != want.Category {
			t.Errorf("record %d identity mismatch: %+v vs %+v", i, have, want)
		}
		if (have.Latitude == nil) != (want.Latitude == nil) {
			t.Errorf("record %d latitude presence mismatch", i)
		}
		if have.Latitude != nil && *have.Latitude != *want.Latitude {
			t.Errorf("record %d latitude = %v, want %v", i, *have.Latitude, *want.Latitude)
		}
		if !have.Timestamp.Equal(want.Timestamp) {
			t.Errorf("record %d timestamp = %v, want %v", i, have.Timestamp, want.Timestamp)
		}
	}
}

// TestReadArtifact_BadHeader verifies that a file with foreign columns is
// rejected instead of silently misparsed.
func TestReadArtifact_BadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tsv")
	content := "id\tname\nx\ty\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadArtifact(path); err == nil {
		t.Fatal("expected error for a foreign header")
	}
}
