package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/AssetMappr/AM-Ingest/internal/db"
	"github.com/AssetMappr/AM-Ingest/internal/ingest"
	"github.com/AssetMappr/AM-Ingest/internal/store"
)

// load-assets loads a previously written TSV artifact into the database,
// re-running the reconciliation gate first. It exists for the manual-review
// workflow: run the pipeline with -dry-run, inspect or correct the
// artifact, then load it here.
func main() {
	godotenv.Load(".env.local")

	var (
		file    = flag.String("file", "", "path to a TSV artifact written by the ingest pipeline")
		dsn     = flag.String("dsn", "", "database connection string (defaults to DATABASE_URL)")
		confirm = flag.Bool("confirm", false, "actually write; without it the tool only reconciles and reports")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}

	batch, err := ingest.ReadArtifact(*file)
	if err != nil {
		log.Fatalf("Artifact error: %v", err)
	}
	log.Printf("Read %d records from %s", len(batch), *file)

	conn, err := db.ConnectDSN(*dsn)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}
	loader := store.New(conn)

	ctx := context.Background()
	started := time.Now().UTC()

	snap, err := loader.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Snapshot error: %v", err)
	}

	result := ingest.Reconcile(batch, snap)
	result.Log()
	if !result.OK() {
		log.Fatalf("Load aborted: %v", result.Err())
	}

	if !*confirm {
		log.Printf("Reconciliation passed for %d records; re-run with -confirm to load", len(batch))
		return
	}

	if err := loader.InsertBatch(ctx, batch, snap); err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	report := ingest.RunReport{
		Fetched:    len(batch),
		Deduped:    len(batch),
		Inserted:   len(batch),
		Accepted:   true,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	if len(batch) > 0 {
		report.CommunityGeoID = batch[0].CommunityGeoID
		report.CommunityName = batch[0].CommunityName
	}
	if err := loader.RecordRun(ctx, report); err != nil {
		log.Printf("Recording run: %v", err)
	}

	log.Printf("Loaded %d records", len(batch))
}
