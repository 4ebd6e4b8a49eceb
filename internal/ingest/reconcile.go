package ingest

import (
	"fmt"
	"log"
	"sort"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// Snapshot is a read-only copy of the master tables, loaded once per run
// and passed to the stages that need it. Nothing in the pipeline mutates
// it, and no stage reads reference data from anywhere else.
type Snapshot struct {
	// Categories maps category label to its master table id.
	Categories map[string]int
	// Sources maps source label to its master table id.
	Sources map[string]int
	// Communities maps community geo id to its name.
	Communities map[int]string
}

// ReconcileResult lists every label in a batch with no matching master
// table row. An empty result accepts the batch.
type ReconcileResult struct {
	MissingCategories  []string
	MissingSources     []string
	MissingCommunities []int
}

// OK reports whether the batch may proceed to the loader.
func (r ReconcileResult) OK() bool {
	return len(r.MissingCategories) == 0 &&
		len(r.MissingSources) == 0 &&
		len(r.MissingCommunities) == 0
}

// Err converts a rejection into an error; accepted batches return nil.
func (r ReconcileResult) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("reconciliation failed: %d categories, %d sources, %d communities missing from master tables",
		len(r.MissingCategories), len(r.MissingSources), len(r.MissingCommunities))
}

// Log prints every offending label for operator remediation.
func (r ReconcileResult) Log() {
	if r.OK() {
		log.Println("[reconcile] no discrepancies between master tables and incoming data")
		return
	}
	for _, c := range r.MissingCategories {
		log.Printf("[reconcile] category in data but not in master table: %q", c)
	}
	for _, s := range r.MissingSources {
		log.Printf("[reconcile] source in data but not in master table: %q", s)
	}
	for _, geoID := range r.MissingCommunities {
		log.Printf("[reconcile] community geo id in data but not in master table: %d", geoID)
	}
	log.Println("[reconcile] discrepancies above must be resolved before this batch can load")
}

// Reconcile validates a batch against the master tables: every category
// label, source label and community geo id appearing in the batch must
// already exist. Any miss rejects the whole batch; nothing is mutated
// either way.
func Reconcile(batch []provider.AssetRecord, snap Snapshot) ReconcileResult {
	var result ReconcileResult

	seenCats := map[string]bool{}
	seenSources := map[string]bool{}
	seenCommunities := map[int]bool{}
	for _, r := range batch {
		if !seenCats[r.Category] {
			seenCats[r.Category] = true
			if _, ok := snap.Categories[r.Category]; !ok {
				result.MissingCategories = append(result.MissingCategories, r.Category)
			}
		}
		if !seenSources[r.Source] {
			seenSources[r.Source] = true
			if _, ok := snap.Sources[r.Source]; !ok {
				result.MissingSources = append(result.MissingSources, r.Source)
			}
		}
		if !seenCommunities[r.CommunityGeoID] {
			seenCommunities[r.CommunityGeoID] = true
			if _, ok := snap.Communities[r.CommunityGeoID]; !ok {
				result.MissingCommunities = append(result.MissingCommunities, r.CommunityGeoID)
			}
		}
	}

	sort.Strings(result.MissingCategories)
	sort.Strings(result.MissingSources)
	sort.Ints(result.MissingCommunities)
	return result
}
