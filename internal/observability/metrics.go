package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and its adapters.
type Metrics struct {
	RecordsFetched   prometheus.Counter
	RecordsDropped   prometheus.Counter
	RecordsMerged    prometheus.Counter
	IngestRuns       *prometheus.CounterVec // labels: outcome={grown,empty,error}
	IngestRunning    prometheus.Gauge
	StoreSize        prometheus.Gauge
	FeedFallbacks    prometheus.Counter
	BackfillDays     *prometheus.CounterVec // labels: outcome={ok,failed}
	IngestDuration   prometheus.Histogram
	FetchDuration    prometheus.Histogram
	GeocodeRequests  *prometheus.CounterVec // labels: outcome={success,error}
	GeocodeCacheHits *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "records_fetched_total",
			Help:      "Raw feed records fetched across all modes.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "records_dropped_total",
			Help:      "Raw records dropped during normalization.",
		}),
		RecordsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "records_merged_total",
			Help:      "New incidents appended to the store.",
		}),
		IngestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "ingest_runs_total",
			Help:      "Completed ingestion runs by outcome.",
		}, []string{"outcome"}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "route_risk",
			Name:      "ingest_running",
			Help:      "1 while the ingestion loop is active.",
		}),
		StoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "route_risk",
			Name:      "store_size",
			Help:      "Incident records currently persisted.",
		}),
		FeedFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "feed_fallbacks_total",
			Help:      "Times the structured feed failed and the HTML scrape ran.",
		}),
		BackfillDays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "backfill_days_total",
			Help:      "Historical backfill days by outcome.",
		}, []string{"outcome"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "route_risk",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-merge-persist run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "route_risk",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a single feed HTTP fetch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_risk",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RecordsFetched,
		m.RecordsDropped,
		m.RecordsMerged,
		m.IngestRuns,
		m.IngestRunning,
		m.StoreSize,
		m.FeedFallbacks,
		m.BackfillDays,
		m.IngestDuration,
		m.FetchDuration,
		m.GeocodeRequests,
		m.GeocodeCacheHits,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsFetched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "route_risk", Name: "records_fetched_total"}),
		RecordsDropped:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "route_risk", Name: "records_dropped_total"}),
		RecordsMerged:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "route_risk", Name: "records_merged_total"}),
		IngestRuns:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "route_risk", Name: "ingest_runs_total"}, []string{"outcome"}),
		IngestRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "route_risk", Name: "ingest_running"}),
		StoreSize:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "route_risk", Name: "store_size"}),
		FeedFallbacks:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "route_risk", Name: "feed_fallbacks_total"}),
		BackfillDays:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "route_risk", Name: "backfill_days_total"}, []string{"outcome"}),
		IngestDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "route_risk", Name: "ingest_duration_seconds"}),
		FetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "route_risk", Name: "feed_fetch_duration_seconds"}),
		GeocodeRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "route_risk", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "route_risk", Name: "geocode_cache_total"}, []string{"result"}),
	}
}
