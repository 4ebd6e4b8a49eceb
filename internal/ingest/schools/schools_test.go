package schools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

func feature(attrs map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"attributes": attrs}
}

// newFakeFeeds serves the three feature services on separate paths, with
// the geocode attribute shape on /private and /postsec and the
// administrative shape on /public.
func newFakeFeeds(t *testing.T, failPostSec bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/private/query", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Query().Get("where"), "CNTY = '42051'") {
			t.Errorf("private feed queried with where=%q", r.URL.Query().Get("where"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"features": []map[string]interface{}{
				feature(map[string]interface{}{
					"NAME": "ST. JOHN THE EVANGELIST SCHOOL", "STREET": "201 W Main St", "CITY": "Uniontown",
					"LAT": 39.8981, "LON": -79.7261,
				}),
			},
		})
	})
	mux.HandleFunc("/public/query", func(w http.ResponseWriter, r *http.Request) {
		where := r.URL.Query().Get("where")
		if !strings.Contains(where, "STABR = 'PA'") || !strings.Contains(where, "NMCNTY = 'Fayette County'") {
			t.Errorf("public feed queried with where=%q", where)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"features": []map[string]interface{}{
				feature(map[string]interface{}{
					"SCH_NAME": "UNIONTOWN AREA SENIOR HIGH SCHOOL", "LSTREET1": "152 Wilson Ave", "LCITY": "Uniontown",
					"LATCOD": 39.8929, "LONCOD": -79.7189,
				}),
				feature(map[string]interface{}{
					"SCH_NAME": "BEN FRANKLIN SCHOOL", "LSTREET1": "320 Searight Ave", "LCITY": "Uniontown",
					"LATCOD": 39.8880, "LONCOD": -79.7330,
				}),
			},
		})
	})
	mux.HandleFunc("/postsec/query", func(w http.ResponseWriter, r *http.Request) {
		if failPostSec {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"features": []map[string]interface{}{
				feature(map[string]interface{}{
					"NAME": "PENN STATE FAYETTE", "STREET": "2201 University Dr", "CITY": "Lemont Furnace",
					"LAT": 39.9370, "LON": -79.6440,
				}),
			},
		})
	})

	return httptest.NewServer(mux)
}

func feedAdapter(srvURL string) *Adapter {
	return NewAdapter(NewClient(provider.Config{
		PrivateSchoolURL: srvURL + "/private",
		PublicSchoolURL:  srvURL + "/public",
		PostSecURL:       srvURL + "/postsec",
	}))
}

// TestFetch_AllFeeds verifies that the three sub-feeds are concatenated
// under the education category, with per-feed attribute names mapped to
// the common shape and names brought to title case.
func TestFetch_AllFeeds(t *testing.T) {
	srv := newFakeFeeds(t, false)
	defer srv.Close()

	q := provider.Query{StateCode: "PA", CountyFIPS: "42051", CountyName: "Fayette County"}
	records, err := feedAdapter(srv.URL).Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 schools across 3 feeds, got %d", len(records))
	}

	byName := map[string]provider.AssetRecord{}
	for _, r := range records {
		byName[r.Name] = r
		if r.Category != "Education and workforce development" {
			t.Errorf("%s: category = %q", r.Name, r.Category)
		}
		if r.Source != provider.SourceSchoolsFeed {
			t.Errorf("%s: source = %q", r.Name, r.Source)
		}
	}

	public, ok := byName["Uniontown Area Senior High School"]
	if !ok {
		t.Fatalf("public school name not title-cased; have %v", names(records))
	}
	if public.Description != "Public school" {
		t.Errorf("description = %q", public.Description)
	}
	if public.Address != "152 Wilson Ave, Uniontown" {
		t.Errorf("address = %q", public.Address)
	}
	if public.Latitude == nil || *public.Latitude != 39.8929 {
		t.Errorf("latitude = %v, want value from LATCOD", public.Latitude)
	}

	if _, ok := byName["Penn State Fayette"]; !ok {
		t.Errorf("postsecondary school missing; have %v", names(records))
	}
}

// TestFetch_FailingFeedIsolated verifies that one broken sub-feed does not
// lose the others' schools.
func TestFetch_FailingFeedIsolated(t *testing.T) {
	srv := newFakeFeeds(t, true)
	defer srv.Close()

	q := provider.Query{StateCode: "PA", CountyFIPS: "42051", CountyName: "Fayette County"}
	records, err := feedAdapter(srv.URL).Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 schools with postsecondary down, got %d", len(records))
	}
	for _, r := range records {
		if r.Description == "Postsecondary school" {
			t.Errorf("unexpected postsecondary record %q", r.Name)
		}
	}
}

func names(records []provider.AssetRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}
