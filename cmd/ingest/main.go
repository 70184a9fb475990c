// Command ingest runs the incident ingestion service: it polls the alert
// feed on a fixed interval, merges new incidents into the local dataset,
// optionally publishes them to Kafka, and serves health and metrics
// endpoints.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/saferoute/route-risk/internal/adapter/feed"
	httpadapter "github.com/saferoute/route-risk/internal/adapter/http"
	kafkaadapter "github.com/saferoute/route-risk/internal/adapter/kafka"
	"github.com/saferoute/route-risk/internal/adapter/nominatim"
	"github.com/saferoute/route-risk/internal/adapter/store"
	"github.com/saferoute/route-risk/internal/config"
	"github.com/saferoute/route-risk/internal/observability"
	"github.com/saferoute/route-risk/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

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

	// Publishing is feature-flagged; the pipeline treats a nil publisher
	// as "persist only".
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	ingestor := pipeline.NewIngestor(fetcher, fileStore, geocoder, publisher, logger, metrics, cfg.ScrapeInterval)
	srv := httpadapter.NewServer(cfg.HTTPAddr, ingestor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := ingestor.Run(ctx); err != nil {
			logger.Error("ingestion loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
