// Command assess scores the driving route between two named places against
// shelter coverage and recent incidents, printing the assessment as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/saferoute/route-risk/internal/adapter/nominatim"
	"github.com/saferoute/route-risk/internal/adapter/ors"
	"github.com/saferoute/route-risk/internal/adapter/store"
	"github.com/saferoute/route-risk/internal/config"
	"github.com/saferoute/route-risk/internal/domain"
	"github.com/saferoute/route-risk/internal/observability"
	"github.com/saferoute/route-risk/internal/risk"
)

func main() {
	_ = godotenv.Load()

	from := flag.String("from", "", "start place name (required)")
	to := flag.String("to", "", "destination place name (required)")
	policy := flag.String("policy", "", "risk policy override: ratio or absolute")
	flag.Parse()

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "usage: assess -from <place> -to <place> [-policy ratio|absolute]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireRouteProvider(); err != nil {
		slog.Error("route provider not configured", "error", err)
		os.Exit(1)
	}

	if *policy != "" {
		p := domain.Policy(*policy)
		if !domain.ValidPolicy(p) {
			fmt.Fprintf(os.Stderr, "unknown policy %q: must be %q or %q\n", *policy, domain.PolicyRatio, domain.PolicyAbsolute)
			os.Exit(2)
		}
		cfg.RiskPolicy = p
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	geocoderClient := nominatim.NewClient(cfg.NominatimURL, cfg.GeocoderUA, cfg.GeocoderTimeout, logger, metrics)
	geocoder := nominatim.NewCachedGeocoder(geocoderClient, cfg.GeocodeCacheSize, metrics)
	routes := ors.NewClient(cfg.ORSURL, cfg.ORSAPIKey, cfg.ORSTimeout, logger)
	fileStore := store.NewFileStore(cfg.DataPath)
	shelters := func() ([]domain.Shelter, error) { return store.LoadShelters(cfg.SheltersPath) }

	assessor := risk.NewAssessor(
		geocoder, routes, fileStore, shelters,
		cfg.ExposureThresholdMeters, cfg.LookbackWindow, cfg.RiskPolicy,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := assessor.Assess(ctx, *from, *to)
	if err != nil {
		logger.Error("assessment failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode assessment failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
