package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// Loader is the persistence boundary of the pipeline. The store package
// implements it against Postgres; tests substitute mocks.
type Loader interface {
	// Snapshot loads the master tables once for a run.
	Snapshot(ctx context.Context) (Snapshot, error)

	// InsertBatch writes a validated batch and its category links in one
	// transaction: all rows or none.
	InsertBatch(ctx context.Context, batch []provider.AssetRecord, snap Snapshot) error

	// RecordRun appends an audit row describing a finished community run.
	RecordRun(ctx context.Context, report RunReport) error
}

// RunReport summarizes one community run for the ingest_runs audit table.
type RunReport struct {
	CommunityGeoID int
	CommunityName  string

	Fetched  int
	Deduped  int
	Inserted int

	Accepted           bool
	MissingCategories  []string
	MissingSources     []string
	MissingCommunities []int

	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}

// Pipeline runs the full ingestion flow per configured community:
// aggregate, annotate, de-duplicate, write the review artifact, reconcile,
// load.
type Pipeline struct {
	Config     Config
	Aggregator *Aggregator
	Loader     Loader

	// DryRun stops after reporting the reconciliation outcome; nothing is
	// written to the store.
	DryRun bool
}

// Run processes every configured community sequentially. A community that
// fails does not stop its siblings; the joined error reports all failures.
func (p *Pipeline) Run(ctx context.Context) error {
	var errs []error
	for _, community := range p.Config.Communities {
		log.Printf("[pipeline] adding data for %s (geo id %d)", community.Name, community.GeoID)
		if err := p.RunCommunity(ctx, community); err != nil {
			log.Printf("[pipeline] community %s failed: %v", community.Name, err)
			errs = append(errs, fmt.Errorf("community %s: %w", community.Name, err))
		}
	}
	return errors.Join(errs...)
}

// RunCommunity executes one community's pipeline pass. Data fetched but not
// persisted is discarded on error; there is no resumption point.
func (p *Pipeline) RunCommunity(ctx context.Context, community CommunityConfig) error {
	started := time.Now().UTC()

	keywords, err := LoadKeywords(community.KeywordsFile)
	if err != nil {
		return fmt.Errorf("load keywords: %w", err)
	}

	query := provider.Query{
		StateCode:  community.StateCode,
		CountyFIPS: community.CountyFIPS,
		CountyName: community.CountyName,
		Latitude:   community.Latitude,
		Longitude:  community.Longitude,
		Radius:     community.Radius,
		Keywords:   keywords,
	}

	batch := p.Aggregator.Fetch(ctx, query)
	fetched := len(batch)

	annotate(batch, community, started)

	deduped := NewDeduper(p.Config.Dedup).Dedup(batch)

	if err := os.MkdirAll(p.Config.ArtifactDir, 0o755); err != nil {
		return fmt.Errorf("artifact dir: %w", err)
	}
	artifactPath := filepath.Join(p.Config.ArtifactDir, fmt.Sprintf("assets_%d.tsv", community.GeoID))
	if err := WriteArtifact(artifactPath, deduped); err != nil {
		return err
	}
	log.Printf("[pipeline] %s: %d fetched, %d after de-duplication, artifact at %s",
		community.Name, fetched, len(deduped), artifactPath)

	snap, err := p.Loader.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load master snapshot: %w", err)
	}

	result := Reconcile(deduped, snap)
	result.Log()

	report := RunReport{
		CommunityGeoID:     community.GeoID,
		CommunityName:      community.Name,
		Fetched:            fetched,
		Deduped:            len(deduped),
		Accepted:           result.OK(),
		MissingCategories:  result.MissingCategories,
		MissingSources:     result.MissingSources,
		MissingCommunities: result.MissingCommunities,
		StartedAt:          started,
	}

	if !result.OK() {
		err := result.Err()
		report.Error = err.Error()
		p.finishRun(ctx, report)
		return err
	}

	if p.DryRun {
		log.Printf("[pipeline] %s: dry run, skipping load of %d records", community.Name, len(deduped))
		return nil
	}

	if err := p.Loader.InsertBatch(ctx, deduped, snap); err != nil {
		report.Error = err.Error()
		p.finishRun(ctx, report)
		return err
	}
	report.Inserted = len(deduped)
	p.finishRun(ctx, report)

	log.Printf("[pipeline] %s: loaded %d records", community.Name, len(deduped))
	return nil
}

// finishRun stamps and records the audit row. Audit failures are logged,
// not fatal: the run outcome already happened.
func (p *Pipeline) finishRun(ctx context.Context, report RunReport) {
	if p.DryRun {
		return
	}
	report.FinishedAt = time.Now().UTC()
	if err := p.Loader.RecordRun(ctx, report); err != nil {
		log.Printf("[pipeline] recording run for %s: %v", report.CommunityName, err)
	}
}

// annotate applies community linkage and lifecycle fields to a fetched
// batch, and derives the deterministic asset id for each record.
func annotate(batch []provider.AssetRecord, community CommunityConfig, ts time.Time) {
	for i := range batch {
		batch[i].CommunityName = community.Name
		batch[i].CommunityGeoID = community.GeoID
		batch[i].AssetType = provider.TangibleAsset
		batch[i].Timestamp = ts
		batch[i].Status = provider.StatusValid
		batch[i].ID = AssetID(batch[i])
	}
}
