// Package nominatim implements domain.Geocoder against a Nominatim-shaped
// search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/saferoute/route-risk/internal/domain"
	"github.com/saferoute/route-risk/internal/observability"
)

// Client implements domain.Geocoder using the Nominatim search API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Nominatim geocoding client. Nominatim's usage policy
// requires an identifying User-Agent on every request.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Geocode resolves a free-text place name to its best-match coordinate.
// Zero results is an error; callers decide whether that drops a record.
func (c *Client) Geocode(ctx context.Context, query string) (domain.Coordinate, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Coordinate{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinate{}, fmt.Errorf("geocoder status %d: %s", resp.StatusCode, body)
	}

	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Coordinate{}, fmt.Errorf("decode geocoder response: %w", err)
	}

	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Coordinate{}, fmt.Errorf("no geocoding results for %q", query)
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return domain.Coordinate{
		Lat: float64(results[0].Lat),
		Lon: float64(results[0].Lon),
	}, nil
}

// result is a single Nominatim search hit. Lat/lon arrive as strings in the
// public API but some deployments return numbers, so decoding is tolerant.
type result struct {
	Lat flexFloat `json:"lat"`
	Lon flexFloat `json:"lon"`
}

// flexFloat decodes a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
