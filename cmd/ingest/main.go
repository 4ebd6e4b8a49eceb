package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AssetMappr/AM-Ingest/internal/db"
	"github.com/AssetMappr/AM-Ingest/internal/ingest"
	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
	"github.com/AssetMappr/AM-Ingest/internal/store"

	// Register the providers.
	_ "github.com/AssetMappr/AM-Ingest/internal/ingest/hospitals"
	_ "github.com/AssetMappr/AM-Ingest/internal/ingest/places"
	_ "github.com/AssetMappr/AM-Ingest/internal/ingest/schools"
)

func main() {
	godotenv.Load(".env.local")

	var (
		configPath = flag.String("config", "config/communities.yaml", "path to the run configuration")
		dryRun     = flag.Bool("dry-run", false, "fetch, de-duplicate and reconcile without writing to the database")
	)
	flag.Parse()

	cfg, err := ingest.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	providerCfg := provider.LoadFromEnv()
	if err := providerCfg.Validate(); err != nil {
		log.Fatalf("Provider config error: %v", err)
	}

	providers, err := provider.NewAll(providerCfg)
	if err != nil {
		log.Fatalf("Provider setup error: %v", err)
	}

	conn, err := db.Connect()
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := &ingest.Pipeline{
		Config:     cfg,
		Aggregator: ingest.NewAggregator(providers...),
		Loader:     store.New(conn),
		DryRun:     *dryRun,
	}

	if err := pipeline.Run(ctx); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	log.Println("Ingestion complete")
}
