package ingest

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// sourceRank fixes merge precedence between providers: when two
// near-duplicate records disagree on a non-empty field, the lower rank
// wins. Ordered by observed field richness of each upstream.
var sourceRank = map[string]int{
	provider.SourceGooglePlaces:     0,
	provider.SourceSchoolsFeed:      1,
	provider.SourceHospitalRegistry: 2,
}

func rank(source string) int {
	if r, ok := sourceRank[source]; ok {
		return r
	}
	return len(sourceRank)
}

// Deduper collapses records that denote the same physical asset. Exact
// duplicates under the fixed row key are dropped; near-duplicates from
// different providers are merged by name similarity and geographic
// proximity.
type Deduper struct {
	nameSimilarity float64
	maxDistance    float64
}

// NewDeduper builds a Deduper, applying the default thresholds for zero
// config values.
func NewDeduper(cfg DedupConfig) *Deduper {
	d := &Deduper{
		nameSimilarity: cfg.NameSimilarity,
		maxDistance:    cfg.MaxDistanceMeters,
	}
	if d.nameSimilarity == 0 {
		d.nameSimilarity = DefaultNameSimilarity
	}
	if d.maxDistance == 0 {
		d.maxDistance = DefaultMaxDistanceMeters
	}
	return d
}

// Dedup returns the batch without duplicates. The result is independent of
// the input row order: records are first brought into a canonical order, so
// shuffling the batch yields a set-equal result, and running Dedup on its
// own output changes nothing.
func (d *Deduper) Dedup(records []provider.AssetRecord) []provider.AssetRecord {
	start := time.Now()

	sorted := make([]provider.AssetRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return canonicalLess(&sorted[i], &sorted[j])
	})

	// Pass 1: exact duplicates under the fixed row key.
	seen := make(map[string]struct{}, len(sorted))
	unique := sorted[:0]
	for _, r := range sorted {
		key := exactKey(&r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	// Pass 2: cluster near-duplicates and merge each cluster.
	parent := make([]int, len(unique))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[rj] = ri
		}
	}

	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			if d.nearDuplicate(&unique[i], &unique[j]) {
				union(i, j)
			}
		}
	}

	clusters := make(map[int][]int)
	for i := range unique {
		root := find(i)
		clusters[root] = append(clusters[root], i)
	}

	roots := make([]int, 0, len(clusters))
	for root := range clusters {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	out := make([]provider.AssetRecord, 0, len(clusters))
	for _, root := range roots {
		members := clusters[root]
		merged := unique[members[0]]
		for _, idx := range members[1:] {
			merged = merge(merged, unique[idx])
		}
		out = append(out, merged)
	}

	provider.LogTransform("dedup", len(records), len(out), time.Since(start))
	return out
}

// nearDuplicate reports whether two records plausibly denote the same
// asset. Records lacking coordinates never merge on proximity; they must
// match exactly on normalized name and address.
func (d *Deduper) nearDuplicate(a, b *provider.AssetRecord) bool {
	if a.Category != b.Category {
		return false
	}

	if a.HasCoordinates() && b.HasCoordinates() {
		if haversineMeters(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude) > d.maxDistance {
			return false
		}
		return nameSimilarity(canonName(a.Name), canonName(b.Name)) >= d.nameSimilarity
	}

	return canonName(a.Name) == canonName(b.Name) &&
		strings.EqualFold(strings.TrimSpace(a.Address), strings.TrimSpace(b.Address))
}

// merge combines two near-duplicate records, preferring populated fields
// and, when both sides are populated, the higher-priority source. The
// operation is commutative: merge(a, b) == merge(b, a).
func merge(a, b provider.AssetRecord) provider.AssetRecord {
	ra, rb := rank(a.Source), rank(b.Source)

	out := a
	out.Name = pickString(a.Name, ra, b.Name, rb)
	out.Description = pickString(a.Description, ra, b.Description, rb)
	out.Address = pickString(a.Address, ra, b.Address, rb)
	out.Website = pickString(a.Website, ra, b.Website, rb)
	out.Source = pickString(a.Source, ra, b.Source, rb)
	out.Latitude, out.Longitude = pickCoords(a, ra, b, rb)
	return out
}

// pickString selects between two field values: a populated value beats an
// empty one, a higher-priority source beats a lower one, and the
// lexicographically smaller string breaks remaining ties so the choice
// never depends on argument order.
func pickString(a string, ra int, b string, rb int) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case ra < rb:
		return a
	case rb < ra:
		return b
	case a <= b:
		return a
	default:
		return b
	}
}

func pickCoords(a provider.AssetRecord, ra int, b provider.AssetRecord, rb int) (*float64, *float64) {
	switch {
	case !a.HasCoordinates():
		return b.Latitude, b.Longitude
	case !b.HasCoordinates():
		return a.Latitude, a.Longitude
	case ra < rb:
		return a.Latitude, a.Longitude
	case rb < ra:
		return b.Latitude, b.Longitude
	}
	// Same priority: smaller (lat, lng) pair wins.
	if *a.Latitude != *b.Latitude {
		if *a.Latitude < *b.Latitude {
			return a.Latitude, a.Longitude
		}
		return b.Latitude, b.Longitude
	}
	if *a.Longitude <= *b.Longitude {
		return a.Latitude, a.Longitude
	}
	return b.Latitude, b.Longitude
}

// exactKey is the fixed de-duplication row key: {name, category,
// description, address, latitude, longitude, website}.
func exactKey(r *provider.AssetRecord) string {
	return strings.Join([]string{
		r.Name,
		r.Category,
		r.Description,
		r.Address,
		keyCoord(r.Latitude),
		keyCoord(r.Longitude),
		r.Website,
	}, "\x1f")
}

func keyCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func canonicalLess(a, b *provider.AssetRecord) bool {
	if ra, rb := rank(a.Source), rank(b.Source); ra != rb {
		return ra < rb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return exactKey(a) < exactKey(b)
}

// nameSimilarity is a Levenshtein ratio in [0, 1] over normalized names.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ar, br := []rune(a), []rune(b)
	longest := len(ar)
	if len(br) > longest {
		longest = len(br)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ar, br))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

const earthRadiusMeters = 6371000.0

// haversineMeters is the great-circle distance between two coordinates.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
