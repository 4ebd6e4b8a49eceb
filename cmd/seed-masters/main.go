package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// seed-masters provisions the schema and master tables the pipeline
// validates against. The master tables are the source of truth: the
// pipeline never invents categories, sources or communities, so this tool
// must run before the first ingest.
//
// Seed data lives in TSV files under -data-dir:
//
//	asset_categories.tsv  category, description
//	sources.tsv           source_name
//	communities.tsv       com_geo_id, com_name

// advisoryLockKey serializes concurrent seed runs against one database.
const advisoryLockKey = 824041

var ddl = []string{
	`CREATE TABLE communities (
		com_geo_id BIGINT PRIMARY KEY,
		com_name   TEXT NOT NULL
	)`,
	`CREATE TABLE asset_categories (
		id          SERIAL PRIMARY KEY,
		category    TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE sources (
		id          SERIAL PRIMARY KEY,
		source_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE assets (
		asset_id            UUID PRIMARY KEY,
		asset_name          TEXT NOT NULL,
		asset_type          TEXT NOT NULL,
		com_name            TEXT NOT NULL,
		com_geo_id          BIGINT NOT NULL REFERENCES communities (com_geo_id),
		source_name         TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		website             TEXT NOT NULL DEFAULT '',
		latitude            DOUBLE PRECISION,
		longitude           DOUBLE PRECISION,
		address             TEXT NOT NULL DEFAULT '',
		generated_timestamp TIMESTAMPTZ NOT NULL,
		asset_status        INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE asset_category_links (
		asset_id    UUID NOT NULL REFERENCES assets (asset_id),
		category_id INTEGER NOT NULL REFERENCES asset_categories (id),
		PRIMARY KEY (asset_id, category_id)
	)`,
	`CREATE TABLE ingest_runs (
		id                  SERIAL PRIMARY KEY,
		com_geo_id          BIGINT NOT NULL,
		com_name            TEXT NOT NULL,
		fetched_count       INTEGER NOT NULL,
		deduped_count       INTEGER NOT NULL,
		inserted_count      INTEGER NOT NULL,
		accepted            BOOLEAN NOT NULL,
		missing_categories  TEXT[],
		missing_sources     TEXT[],
		missing_communities BIGINT[],
		started_at          TIMESTAMPTZ NOT NULL,
		finished_at         TIMESTAMPTZ NOT NULL,
		error               TEXT NOT NULL DEFAULT ''
	)`,
}

var dropOrder = []string{
	"ingest_runs",
	"asset_category_links",
	"assets",
	"sources",
	"asset_categories",
	"communities",
}

func main() {
	godotenv.Load(".env.local")

	var (
		dsn     = flag.String("dsn", "", "database connection string (defaults to DATABASE_URL)")
		dataDir = flag.String("data-dir", "config/masters", "directory holding the master table TSVs")
		dryRun  = flag.Bool("dry-run", false, "print what would be done without touching the database")
		confirm = flag.Bool("confirm", false, "DANGER: drops and recreates all pipeline tables")
	)
	flag.Parse()

	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		log.Fatal("No DSN: pass -dsn or set DATABASE_URL")
	}

	categories, err := readTSV(filepath.Join(*dataDir, "asset_categories.tsv"), []string{"category", "description"})
	if err != nil {
		log.Fatalf("Seed data error: %v", err)
	}
	sources, err := readTSV(filepath.Join(*dataDir, "sources.tsv"), []string{"source_name"})
	if err != nil {
		log.Fatalf("Seed data error: %v", err)
	}
	communities, err := readTSV(filepath.Join(*dataDir, "communities.tsv"), []string{"com_geo_id", "com_name"})
	if err != nil {
		log.Fatalf("Seed data error: %v", err)
	}

	log.Printf("Seed data: %d categories, %d sources, %d communities",
		len(categories), len(sources), len(communities))

	if *dryRun {
		log.Println("Dry run: would drop and recreate 6 tables and seed the rows above")
		return
	}
	if !*confirm {
		log.Fatal("Refusing to run: this tool drops all pipeline tables, pass -confirm")
	}

	conn, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec("SELECT pg_advisory_lock($1)", advisoryLockKey); err != nil {
		log.Fatalf("Advisory lock error: %v", err)
	}
	defer conn.Exec("SELECT pg_advisory_unlock($1)", advisoryLockKey)

	if err := seed(conn, categories, sources, communities); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Master tables seeded")
}

func seed(conn *sql.DB, categories, sources, communities [][]string) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range dropOrder {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	for _, stmt := range ddl {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, row := range categories {
		if _, err := tx.Exec(
			"INSERT INTO asset_categories (category, description) VALUES ($1, $2)",
			row[0], row[1]); err != nil {
			return fmt.Errorf("insert category %q: %w", row[0], err)
		}
	}
	for _, row := range sources {
		if _, err := tx.Exec(
			"INSERT INTO sources (source_name) VALUES ($1)", row[0]); err != nil {
			return fmt.Errorf("insert source %q: %w", row[0], err)
		}
	}
	for _, row := range communities {
		geoID, err := strconv.Atoi(row[0])
		if err != nil {
			return fmt.Errorf("community geo id %q: %w", row[0], err)
		}
		if _, err := tx.Exec(
			"INSERT INTO communities (com_geo_id, com_name) VALUES ($1, $2)",
			geoID, row[1]); err != nil {
			return fmt.Errorf("insert community %q: %w", row[1], err)
		}
	}

	return tx.Commit()
}

// readTSV reads a headed tab-separated seed file and returns its data rows.
func readTSV(path string, wantHeader []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = len(wantHeader)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	for i, want := range wantHeader {
		if rows[0][i] != want {
			return nil, fmt.Errorf("%s column %d: want %q, got %q", path, i, want, rows[0][i])
		}
	}
	return rows[1:], nil
}
