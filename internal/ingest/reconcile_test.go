package ingest

import (
	"reflect"
	"testing"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

func masterSnapshot() Snapshot {
	return Snapshot{
		Categories: map[string]int{
			"Healthcare":          1,
			"Culture and history": 2,
		},
		Sources: map[string]int{
			provider.SourceGooglePlaces:     1,
			provider.SourceHospitalRegistry: 2,
		},
		Communities: map[int]string{
			4278528: "Uniontown",
		},
	}
}

// TestReconcile_Accepts verifies that a batch whose labels all resolve
// against the master tables passes the gate.
func TestReconcile_Accepts(t *testing.T) {
	batch := []provider.AssetRecord{
		{Category: "Healthcare", Source: provider.SourceHospitalRegistry, CommunityGeoID: 4278528},
		{Category: "Culture and history", Source: provider.SourceGooglePlaces, CommunityGeoID: 4278528},
	}

	result := Reconcile(batch, masterSnapshot())
	if !result.OK() {
		t.Fatalf("expected batch to pass, got %+v", result)
	}
	if err := result.Err(); err != nil {
		t.Errorf("expected nil error for an accepted batch, got %v", err)
	}
}

// TestReconcile_RejectsUnknownLabels verifies that every unknown label is
// reported exactly once, sorted, and that one miss rejects the batch.
func TestReconcile_RejectsUnknownLabels(t *testing.T) {
	batch := []provider.AssetRecord{
		{Category: "Healthcare", Source: provider.SourceHospitalRegistry, CommunityGeoID: 4278528},
		{Category: "Zoos", Source: provider.SourceGooglePlaces, CommunityGeoID: 4278528},
		{Category: "Aquariums", Source: "Mystery Feed", CommunityGeoID: 99999},
		{Category: "Zoos", Source: "Mystery Feed", CommunityGeoID: 99999},
	}

	result := Reconcile(batch, masterSnapshot())
	if result.OK() {
		t.Fatal("expected batch to be rejected")
	}
	if result.Err() == nil {
		t.Fatal("expected non-nil error for a rejected batch")
	}

	if want := []string{"Aquariums", "Zoos"}; !reflect.DeepEqual(result.MissingCategories, want) {
		t.Errorf("missing categories = %v, want %v", result.MissingCategories, want)
	}
	if want := []string{"Mystery Feed"}; !reflect.DeepEqual(result.MissingSources, want) {
		t.Errorf("missing sources = %v, want %v", result.MissingSources, want)
	}
	if want := []int{99999}; !reflect.DeepEqual(result.MissingCommunities, want) {
		t.Errorf("missing communities = %v, want %v", result.MissingCommunities, want)
	}
}

// TestReconcile_EmptyBatch verifies that an empty batch trivially passes:
// there is nothing to contradict the master tables.
func TestReconcile_EmptyBatch(t *testing.T) {
	result := Reconcile(nil, masterSnapshot())
	if !result.OK() {
		t.Errorf("expected empty batch to pass, got %+v", result)
	}
}
