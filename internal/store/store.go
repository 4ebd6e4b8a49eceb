package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AssetMappr/AM-Ingest/internal/ingest"
	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// Store implements ingest.Loader against Postgres via gorm.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Snapshot loads the three master tables into memory. Callers hold the
// result for the duration of one run; it is never refreshed mid-run.
func (s *Store) Snapshot(ctx context.Context) (ingest.Snapshot, error) {
	snap := ingest.Snapshot{
		Categories:  map[string]int{},
		Sources:     map[string]int{},
		Communities: map[int]string{},
	}

	var categories []Category
	if err := s.db.WithContext(ctx).Find(&categories).Error; err != nil {
		return snap, fmt.Errorf("load asset_categories: %w", err)
	}
	for _, c := range categories {
		snap.Categories[c.Category] = c.ID
	}

	var sources []Source
	if err := s.db.WithContext(ctx).Find(&sources).Error; err != nil {
		return snap, fmt.Errorf("load sources: %w", err)
	}
	for _, src := range sources {
		snap.Sources[src.Name] = src.ID
	}

	var communities []Community
	if err := s.db.WithContext(ctx).Find(&communities).Error; err != nil {
		return snap, fmt.Errorf("load communities: %w", err)
	}
	for _, c := range communities {
		snap.Communities[c.GeoID] = c.Name
	}

	return snap, nil
}

// InsertBatch writes a reconciled batch in one transaction: one assets row
// per distinct asset id and one asset_category_links row per (asset,
// category) pair. A record whose category is absent from the snapshot
// aborts the transaction; the reconciler should have rejected it already.
func (s *Store) InsertBatch(ctx context.Context, batch []provider.AssetRecord, snap ingest.Snapshot) error {
	if len(batch) == 0 {
		return nil
	}
	start := time.Now()

	assets := make([]Asset, 0, len(batch))
	links := make([]AssetCategory, 0, len(batch))
	seen := make(map[uuid.UUID]bool, len(batch))
	linked := make(map[AssetCategory]bool, len(batch))

	for _, r := range batch {
		catID, ok := snap.Categories[r.Category]
		if !ok {
			return fmt.Errorf("category %q has no master table row", r.Category)
		}

		// Multi-category assets share an id: one assets row, many links.
		if !seen[r.ID] {
			seen[r.ID] = true
			assets = append(assets, Asset{
				ID:             r.ID,
				Name:           r.Name,
				Type:           r.AssetType,
				CommunityName:  r.CommunityName,
				CommunityGeoID: r.CommunityGeoID,
				SourceName:     r.Source,
				Description:    r.Description,
				Website:        r.Website,
				Latitude:       r.Latitude,
				Longitude:      r.Longitude,
				Address:        r.Address,
				Timestamp:      r.Timestamp.UTC(),
				Status:         r.Status,
			})
		}

		link := AssetCategory{AssetID: r.ID, CategoryID: catID}
		if !linked[link] {
			linked[link] = true
			links = append(links, link)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assets).Error; err != nil {
			return fmt.Errorf("insert %d assets: %w", len(assets), err)
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("insert %d asset_category_links: %w", len(links), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	provider.LogInsert("assets", len(assets), time.Since(start))
	provider.LogInsert("asset_category_links", len(links), time.Since(start))
	return nil
}

// RecordRun appends one ingest_runs audit row.
func (s *Store) RecordRun(ctx context.Context, report ingest.RunReport) error {
	missingCommunities := make([]int64, len(report.MissingCommunities))
	for i, geoID := range report.MissingCommunities {
		missingCommunities[i] = int64(geoID)
	}

	run := IngestRun{
		CommunityGeoID:     report.CommunityGeoID,
		CommunityName:      report.CommunityName,
		Fetched:            report.Fetched,
		Deduped:            report.Deduped,
		Inserted:           report.Inserted,
		Accepted:           report.Accepted,
		MissingCategories:  report.MissingCategories,
		MissingSources:     report.MissingSources,
		MissingCommunities: missingCommunities,
		StartedAt:          report.StartedAt,
		FinishedAt:         report.FinishedAt,
		Error:              report.Error,
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("insert ingest_runs: %w", err)
	}
	return nil
}
