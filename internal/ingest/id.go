package ingest

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

// assetNamespace is the fixed UUIDv5 namespace for asset identity.
var assetNamespace = uuid.MustParse("7b9a21a6-4e8f-5a31-9c7d-2f08d1e6b3a4")

// AssetID derives a stable asset identifier from name and location, so the
// same physical asset keeps one id across runs and across its category
// rows. Category is deliberately excluded: an asset with three categories is
// still one asset.
func AssetID(r provider.AssetRecord) uuid.UUID {
	canon := strings.Join([]string{
		"asset",
		canonName(r.Name),
		strings.ToLower(strings.TrimSpace(r.Address)),
		fmtCoord(r.Latitude),
		fmtCoord(r.Longitude),
	}, ":")
	return uuid.NewSHA1(assetNamespace, []byte(canon))
}

func canonName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(name)), " "))
}

func fmtCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
