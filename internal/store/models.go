package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Community is a master table row: a geography the platform serves,
// keyed by its census geo id.
type Community struct {
	GeoID int    `gorm:"primaryKey;column:com_geo_id"`
	Name  string `gorm:"column:com_name"`
}

func (Community) TableName() string { return "communities" }

// Category is a master table row naming an asset category.
type Category struct {
	ID          int    `gorm:"primaryKey;column:id"`
	Category    string `gorm:"column:category"`
	Description string `gorm:"column:description"`
}

func (Category) TableName() string { return "asset_categories" }

// Source is a master table row naming a data source.
type Source struct {
	ID   int    `gorm:"primaryKey;column:id"`
	Name string `gorm:"column:source_name"`
}

func (Source) TableName() string { return "sources" }

// Asset is one physical or intangible community asset. Coordinates are
// nullable: some upstreams only supply an address.
type Asset struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;column:asset_id"`
	Name           string    `gorm:"column:asset_name"`
	Type           string    `gorm:"column:asset_type"`
	CommunityName  string    `gorm:"column:com_name"`
	CommunityGeoID int       `gorm:"column:com_geo_id"`
	SourceName     string    `gorm:"column:source_name"`
	Description    string    `gorm:"column:description"`
	Website        string    `gorm:"column:website"`
	Latitude       *float64  `gorm:"column:latitude"`
	Longitude      *float64  `gorm:"column:longitude"`
	Address        string    `gorm:"column:address"`
	Timestamp      time.Time `gorm:"column:generated_timestamp"`
	Status         int       `gorm:"column:asset_status"`
}

func (Asset) TableName() string { return "assets" }

// AssetCategory links an asset to one of its categories. An asset with
// three categories has three rows here and one row in assets.
type AssetCategory struct {
	AssetID    uuid.UUID `gorm:"type:uuid;primaryKey;column:asset_id"`
	CategoryID int       `gorm:"primaryKey;column:category_id"`
}

func (AssetCategory) TableName() string { return "asset_category_links" }

// IngestRun is the audit row written after each community pipeline run,
// accepted or not.
type IngestRun struct {
	ID                 int            `gorm:"primaryKey;column:id;autoIncrement"`
	CommunityGeoID     int            `gorm:"column:com_geo_id"`
	CommunityName      string         `gorm:"column:com_name"`
	Fetched            int            `gorm:"column:fetched_count"`
	Deduped            int            `gorm:"column:deduped_count"`
	Inserted           int            `gorm:"column:inserted_count"`
	Accepted           bool           `gorm:"column:accepted"`
	MissingCategories  pq.StringArray `gorm:"type:text[];column:missing_categories"`
	MissingSources     pq.StringArray `gorm:"type:text[];column:missing_sources"`
	MissingCommunities pq.Int64Array  `gorm:"type:bigint[];column:missing_communities"`
	StartedAt          time.Time      `gorm:"column:started_at"`
	FinishedAt         time.Time      `gorm:"column:finished_at"`
	Error              string         `gorm:"column:error"`
}

func (IngestRun) TableName() string { return "ingest_runs" }
