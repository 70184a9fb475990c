// Package pipeline orchestrates the incident ingestion loop: fetch raw
// alerts, normalize them into canonical incidents, merge into the persistent
// dataset, and publish whatever the merge added.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/saferoute/route-risk/internal/domain"
	"github.com/saferoute/route-risk/internal/observability"
)

// Fetcher retrieves raw alert batches from the external feed.
type Fetcher interface {
	FetchLatest(ctx context.Context) []domain.RawAlert
	FetchDay(ctx context.Context, date time.Time) ([]domain.RawAlert, error)
}

// Store persists the incident dataset.
type Store interface {
	Load() ([]domain.Incident, error)
	Save(incidents []domain.Incident) error
}

// Publisher forwards newly merged incidents to downstream consumers.
type Publisher interface {
	PublishBatch(ctx context.Context, incidents []domain.Incident) error
}

// Ingestor runs the fetch-normalize-merge-persist cycle.
type Ingestor struct {
	fetcher   Fetcher
	store     Store
	geocoder  domain.Geocoder
	publisher Publisher // nil when publishing is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	ready     atomic.Bool
}

// NewIngestor creates an Ingestor. publisher may be nil; the pipeline then
// persists without forwarding.
func NewIngestor(f Fetcher, s Store, g domain.Geocoder, p Publisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Ingestor {
	return &Ingestor{
		fetcher:   f,
		store:     s,
		geocoder:  g,
		publisher: p,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
	}
}

// CheckReadiness returns nil once the ingestor has completed at least one
// run, successful or empty.
func (in *Ingestor) CheckReadiness(_ context.Context) error {
	if !in.ready.Load() {
		return errors.New("ingestion has not completed a run")
	}
	return nil
}

// RunOnce executes a single ingestion cycle. Fetch and normalization
// failures shrink the batch rather than failing the run; only store errors
// are returned, since they mean the dataset cannot be trusted.
func (in *Ingestor) RunOnce(ctx context.Context) error {
	start := time.Now()

	raws := in.fetcher.FetchLatest(ctx)
	incidents := domain.NormalizeAlerts(ctx, raws, in.geocoder, in.logger)
	if dropped := len(raws) - len(incidents); dropped > 0 {
		in.metrics.RecordsDropped.Add(float64(dropped))
	}

	added, err := in.mergeAndPersist(ctx, incidents)
	if err != nil {
		in.metrics.IngestRuns.WithLabelValues("error").Inc()
		return err
	}

	outcome := "empty"
	if added > 0 {
		outcome = "grown"
	}
	in.metrics.IngestRuns.WithLabelValues(outcome).Inc()
	in.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	in.ready.Store(true)

	in.logger.Info("ingestion run complete",
		"fetched", len(raws),
		"normalized", len(incidents),
		"added", added,
		"duration", time.Since(start),
	)
	return nil
}

// Run executes RunOnce immediately, then on every tick of the scrape
// interval until the context is cancelled. Runs never overlap; a slow run
// simply delays the next tick's work.
func (in *Ingestor) Run(ctx context.Context) error {
	in.logger.Info("ingestion loop started", "interval", in.interval)
	in.metrics.IngestRunning.Set(1)
	defer in.metrics.IngestRunning.Set(0)

	if err := in.RunOnce(ctx); err != nil {
		in.logger.Error("ingestion run failed", "error", err)
	}

	ticker := domain.Clock().NewTicker(in.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			in.logger.Info("ingestion loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if err := in.RunOnce(ctx); err != nil {
				in.logger.Error("ingestion run failed", "error", err)
			}
		}
	}
}

// Backfill fetches the per-day history feed for every calendar day from
// `from` through today inclusive, then merges the whole haul in one pass.
// Days that fail to fetch are logged and skipped.
func (in *Ingestor) Backfill(ctx context.Context, from time.Time) error {
	today := startOfDay(domain.Clock().Now().UTC())
	day := startOfDay(from.UTC())

	var batch []domain.RawAlert
	for !day.After(today) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raws, err := in.fetcher.FetchDay(ctx, day)
		if err != nil {
			in.logger.Warn("backfill day failed, skipping", "date", day.Format("2006-01-02"), "error", err)
			in.metrics.BackfillDays.WithLabelValues("failed").Inc()
		} else {
			batch = append(batch, raws...)
			in.metrics.BackfillDays.WithLabelValues("ok").Inc()
		}
		day = day.AddDate(0, 0, 1)
	}

	incidents := domain.NormalizeAlerts(ctx, batch, in.geocoder, in.logger)
	if dropped := len(batch) - len(incidents); dropped > 0 {
		in.metrics.RecordsDropped.Add(float64(dropped))
	}

	added, err := in.mergeAndPersist(ctx, incidents)
	if err != nil {
		return err
	}

	in.logger.Info("backfill complete",
		"from", startOfDay(from.UTC()).Format("2006-01-02"),
		"fetched", len(batch),
		"added", added,
	)
	return nil
}

// mergeAndPersist merges candidates into the stored dataset and writes it
// back only when the merge added records. Returns the number added.
func (in *Ingestor) mergeAndPersist(ctx context.Context, candidates []domain.Incident) (int, error) {
	existing, err := in.store.Load()
	if err != nil {
		return 0, err
	}

	merged, added := domain.Merge(existing, candidates)
	if added > 0 {
		if err := in.store.Save(merged); err != nil {
			return 0, err
		}
		in.metrics.RecordsMerged.Add(float64(added))
		in.publish(ctx, merged[len(existing):])
	}
	in.metrics.StoreSize.Set(float64(len(merged)))

	return added, nil
}

// publish forwards new incidents when a publisher is configured. Publish
// failures are logged, never fatal: the dataset is already persisted.
func (in *Ingestor) publish(ctx context.Context, incidents []domain.Incident) {
	if in.publisher == nil || len(incidents) == 0 {
		return
	}
	if err := in.publisher.PublishBatch(ctx, incidents); err != nil {
		in.logger.Warn("publish new incidents failed", "count", len(incidents), "error", err)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
