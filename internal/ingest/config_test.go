package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "communities.yaml", `
artifactDir: out
dedup:
  nameSimilarity: 0.9
communities:
  - name: Uniontown
    geoId: 4278528
    stateCode: PA
    countyFips: "42051"
    countyName: Fayette County
    latitude: 39.8993
    longitude: -79.7245
    radius: 10000
    keywordsFile: keywords.csv
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Communities) != 1 {
		t.Fatalf("expected 1 community, got %d", len(cfg.Communities))
	}
	c := cfg.Communities[0]
	if c.Name != "Uniontown" || c.GeoID != 4278528 || c.CountyFIPS != "42051" {
		t.Errorf("community parsed wrong: %+v", c)
	}
	if cfg.ArtifactDir != "out" {
		t.Errorf("artifactDir = %q, want %q", cfg.ArtifactDir, "out")
	}
	if cfg.Dedup.NameSimilarity != 0.9 {
		t.Errorf("nameSimilarity = %v, want 0.9", cfg.Dedup.NameSimilarity)
	}
	// Unset threshold falls back to the default.
	if cfg.Dedup.MaxDistanceMeters != DefaultMaxDistanceMeters {
		t.Errorf("maxDistanceMeters = %v, want default %v", cfg.Dedup.MaxDistanceMeters, DefaultMaxDistanceMeters)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no communities", `artifactDir: out`, "no communities"},
		{"missing geo id", `
communities:
  - name: Uniontown
    stateCode: PA
    countyFips: "42051"
    countyName: Fayette County
    radius: 10000
    keywordsFile: keywords.csv
`, "geoId"},
		{"missing keywords file", `
communities:
  - name: Uniontown
    geoId: 4278528
    stateCode: PA
    countyFips: "42051"
    countyName: Fayette County
    radius: 10000
`, "keywordsFile"},
	}

	for _, tc := range cases {
		path := writeFile(t, "bad.yaml", tc.yaml)
		_, err := LoadConfig(path)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestLoadKeywords(t *testing.T) {
	path := writeFile(t, "keywords.csv", "category,keyword\nHealthcare,pharmacy\nCulture and history,library\n")

	got, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("LoadKeywords failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(got))
	}
	if got[0].Category != "Healthcare" || got[0].Keyword != "pharmacy" {
		t.Errorf("first keyword parsed wrong: %+v", got[0])
	}
}

// TestLoadKeywords_BOM verifies that a UTF-8 byte order mark on the header
// (common in spreadsheet exports) does not break column detection.
func TestLoadKeywords_BOM(t *testing.T) {
	path := writeFile(t, "keywords.csv", "\ufeffcategory,keyword\nHealthcare,pharmacy\n")

	got, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("LoadKeywords failed on BOM header: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Healthcare" {
		t.Errorf("BOM header parsed wrong: %+v", got)
	}
}

func TestLoadKeywords_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing keyword column", "category\nHealthcare\n"},
		{"blank keyword", "category,keyword\nHealthcare,\n"},
		{"no data rows", "category,keyword\n"},
	}

	for _, tc := range cases {
		path := writeFile(t, "keywords.csv", tc.content)
		if _, err := LoadKeywords(path); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
