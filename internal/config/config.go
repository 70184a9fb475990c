package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saferoute/route-risk/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Storage paths.
	DataPath     string
	SheltersPath string

	// Incident feed endpoints.
	FeedURL        string
	FeedHomeURL    string
	FeedHistoryURL string
	FeedTimeout    time.Duration

	// Route provider (OpenRouteService-shaped).
	ORSURL     string
	ORSAPIKey  string
	ORSTimeout time.Duration

	// Geocoder (Nominatim-shaped).
	NominatimURL     string
	GeocoderUA       string
	GeocoderTimeout  time.Duration
	GeocodeCacheSize int

	// Risk scoring.
	ExposureThresholdMeters float64
	LookbackWindow          time.Duration
	RiskPolicy              domain.Policy

	// Ingestion loop and HTTP surface.
	ScrapeInterval  time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka publishing of newly merged incidents.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Validation is eager: a malformed duration or number fails
// here rather than surfacing later as a cryptic transport failure.
func Load() (*Config, error) {
	feedTimeout, err := parseDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	orsTimeout, err := parseDuration("ORS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parseDuration("GEOCODER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	lookback, err := parseDuration("LOOKBACK_WINDOW", "24h")
	if err != nil {
		return nil, err
	}
	scrapeInterval, err := parseDuration("SCRAPE_INTERVAL", "12h")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	threshold, err := parseFloat("EXPOSURE_THRESHOLD_METERS", 1000)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	policy := domain.Policy(envOrDefault("RISK_POLICY", string(domain.PolicyRatio)))
	if !domain.ValidPolicy(policy) {
		return nil, fmt.Errorf("invalid RISK_POLICY %q: must be %q or %q", policy, domain.PolicyRatio, domain.PolicyAbsolute)
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		DataPath:     envOrDefault("DATA_PATH", "missile_hits.json"),
		SheltersPath: envOrDefault("SHELTERS_PATH", "shelters.json"),

		FeedURL:        envOrDefault("FEED_URL", "https://rocketalert.live/alerts.json"),
		FeedHomeURL:    envOrDefault("FEED_HOME_URL", "https://rocketalert.live/"),
		FeedHistoryURL: envOrDefault("FEED_HISTORY_URL", "https://rocketalert.live/history"),
		FeedTimeout:    feedTimeout,

		ORSURL:     envOrDefault("ORS_URL", "https://api.openrouteservice.org/v2/directions/driving-car"),
		ORSAPIKey:  os.Getenv("ORS_API_KEY"),
		ORSTimeout: orsTimeout,

		NominatimURL:     envOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderUA:       envOrDefault("GEOCODER_USER_AGENT", "route-risk"),
		GeocoderTimeout:  geocoderTimeout,
		GeocodeCacheSize: cacheSize,

		ExposureThresholdMeters: threshold,
		LookbackWindow:          lookback,
		RiskPolicy:              policy,

		ScrapeInterval:  scrapeInterval,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "incident-updates"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.ExposureThresholdMeters <= 0 {
		return nil, errors.New("EXPOSURE_THRESHOLD_METERS must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// RequireRouteProvider verifies the settings the assessment path needs.
// A missing API key is an explicit configuration error here, not a 401
// deferred to the first route call.
func (c *Config) RequireRouteProvider() error {
	if c.ORSAPIKey == "" {
		return errors.New("ORS_API_KEY is required for route assessment")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
