// Command backfill replays the per-day history feed from a start date
// through today, merging everything it finds into the local dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/saferoute/route-risk/internal/adapter/feed"
	"github.com/saferoute/route-risk/internal/adapter/nominatim"
	"github.com/saferoute/route-risk/internal/adapter/store"
	"github.com/saferoute/route-risk/internal/config"
	"github.com/saferoute/route-risk/internal/observability"
	"github.com/saferoute/route-risk/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	fromStr := flag.String("from", "", "start date, YYYY-MM-DD (required)")
	flag.Parse()

	if *fromStr == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill -from YYYY-MM-DD")
		os.Exit(2)
	}
	from, err := time.ParseInLocation("2006-01-02", *fromStr, time.UTC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from date %q: expected YYYY-MM-DD\n", *fromStr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	geocoderClient := nominatim.NewClient(cfg.NominatimURL, cfg.GeocoderUA, cfg.GeocoderTimeout, logger, metrics)
	geocoder := nominatim.NewCachedGeocoder(geocoderClient, cfg.GeocodeCacheSize, metrics)
	fetcher := feed.NewClient(cfg, logger, metrics)
	fileStore := store.NewFileStore(cfg.DataPath)

	ingestor := pipeline.NewIngestor(fetcher, fileStore, geocoder, nil, logger, metrics, cfg.ScrapeInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ingestor.Backfill(ctx, from); err != nil {
		logger.Error("backfill failed", "error", err)
		os.Exit(1)
	}
}
