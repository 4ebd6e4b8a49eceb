package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// Default fuzzy de-duplication thresholds. Both are configurable per run;
// the defaults are deliberately conservative so distinct assets sharing a
// campus do not collapse.
const (
	DefaultNameSimilarity    = 0.85
	DefaultMaxDistanceMeters = 150.0
)

// DedupConfig tunes the fuzzy de-duplication pass.
type DedupConfig struct {
	NameSimilarity    float64 `yaml:"nameSimilarity"`
	MaxDistanceMeters float64 `yaml:"maxDistanceMeters"`
}

// CommunityConfig describes one community to ingest: its identity in the
// communities master table plus the geographic query parameters each
// provider needs.
type CommunityConfig struct {
	Name       string  `yaml:"name"`
	GeoID      int     `yaml:"geoId"`
	StateCode  string  `yaml:"stateCode"`
	CountyFIPS string  `yaml:"countyFips"`
	CountyName string  `yaml:"countyName"`
	Latitude   float64 `yaml:"latitude"`
	Longitude  float64 `yaml:"longitude"`
	Radius     int     `yaml:"radius"`

	// KeywordsFile is a CSV (header: category,keyword) driving the places
	// search for this community.
	KeywordsFile string `yaml:"keywordsFile"`
}

// Config is the full run configuration.
type Config struct {
	Communities []CommunityConfig `yaml:"communities"`

	// ArtifactDir receives one TSV per community between fetch and load.
	ArtifactDir string `yaml:"artifactDir"`

	Dedup DedupConfig `yaml:"dedup"`
}

// LoadConfig reads and validates a YAML run configuration.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Communities) == 0 {
		return Config{}, errors.New("config lists no communities")
	}
	for i, c := range cfg.Communities {
		if c.Name == "" {
			return Config{}, fmt.Errorf("community %d: name is required", i)
		}
		if c.GeoID == 0 {
			return Config{}, fmt.Errorf("community %q: geoId is required", c.Name)
		}
		if c.StateCode == "" || c.CountyFIPS == "" || c.CountyName == "" {
			return Config{}, fmt.Errorf("community %q: stateCode, countyFips and countyName are required", c.Name)
		}
		if c.Radius <= 0 {
			return Config{}, fmt.Errorf("community %q: radius must be positive", c.Name)
		}
		if c.KeywordsFile == "" {
			return Config{}, fmt.Errorf("community %q: keywordsFile is required", c.Name)
		}
	}

	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = "data"
	}
	if cfg.Dedup.NameSimilarity == 0 {
		cfg.Dedup.NameSimilarity = DefaultNameSimilarity
	}
	if cfg.Dedup.MaxDistanceMeters == 0 {
		cfg.Dedup.MaxDistanceMeters = DefaultMaxDistanceMeters
	}

	return cfg, nil
}

// LoadKeywords parses a community keyword CSV. The file must carry a
// category and keyword column; blank cells are rejected rather than sent
// upstream as empty searches.
func LoadKeywords(path string) ([]provider.CategoryKeyword, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("keywords csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range []string{"category", "keyword"} {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	var out []provider.CategoryKeyword
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		category := get("category")
		keyword := get("keyword")
		if category == "" {
			return nil, fmt.Errorf("row %d: category is required", rowIdx+1)
		}
		if keyword == "" {
			return nil, fmt.Errorf("row %d: keyword is required", rowIdx+1)
		}

		out = append(out, provider.CategoryKeyword{Category: category, Keyword: keyword})
	}

	return out, nil
}
