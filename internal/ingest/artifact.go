package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// artifactColumns is the header of the intermediate TSV written between
// fetch and load. The file exists so an operator can inspect or correct a
// batch before the reconciler gate runs.
var artifactColumns = []string{
	"asset_id",
	"name",
	"category",
	"description",
	"address",
	"latitude",
	"longitude",
	"website",
	"source_name",
	"com_name",
	"com_geo_id",
	"type",
	"timestamp",
	"status",
}

// WriteArtifact writes one batch to a tab-separated file, one row per
// AssetRecord.
func WriteArtifact(path string, batch []provider.AssetRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(artifactColumns); err != nil {
		return fmt.Errorf("write artifact header: %w", err)
	}

	for _, r := range batch {
		row := []string{
			r.ID.String(),
			r.Name,
			r.Category,
			r.Description,
			r.Address,
			fmtCoord(r.Latitude),
			fmtCoord(r.Longitude),
			r.Website,
			r.Source,
			r.CommunityName,
			strconv.Itoa(r.CommunityGeoID),
			r.AssetType,
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(r.Status),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write artifact row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}
	return nil
}

// ReadArtifact reads a batch back from a TSV artifact, typically after
// manual review.
func ReadArtifact(path string) ([]provider.AssetRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = len(artifactColumns)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("artifact %s is empty", path)
	}

	for i, want := range artifactColumns {
		if rows[0][i] != want {
			return nil, fmt.Errorf("artifact column %d: want %q, got %q", i, want, rows[0][i])
		}
	}

	batch := make([]provider.AssetRecord, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		rec, err := parseArtifactRow(row)
		if err != nil {
			return nil, fmt.Errorf("artifact row %d: %w", idx+2, err)
		}
		batch = append(batch, rec)
	}
	return batch, nil
}

func parseArtifactRow(row []string) (provider.AssetRecord, error) {
	var rec provider.AssetRecord
	var err error

	if rec.ID, err = uuid.Parse(row[0]); err != nil {
		return rec, fmt.Errorf("asset_id: %w", err)
	}
	rec.Name = row[1]
	rec.Category = row[2]
	rec.Description = row[3]
	rec.Address = row[4]
	if rec.Latitude, err = parseCoord(row[5]); err != nil {
		return rec, fmt.Errorf("latitude: %w", err)
	}
	if rec.Longitude, err = parseCoord(row[6]); err != nil {
		return rec, fmt.Errorf("longitude: %w", err)
	}
	rec.Website = row[7]
	rec.Source = row[8]
	rec.CommunityName = row[9]
	if rec.CommunityGeoID, err = strconv.Atoi(row[10]); err != nil {
		return rec, fmt.Errorf("com_geo_id: %w", err)
	}
	rec.AssetType = row[11]
	if rec.Timestamp, err = time.Parse(time.RFC3339, row[12]); err != nil {
		return rec, fmt.Errorf("timestamp: %w", err)
	}
	if rec.Status, err = strconv.Atoi(row[13]); err != nil {
		return rec, fmt.Errorf("status: %w", err)
	}
	return rec, nil
}

func parseCoord(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
