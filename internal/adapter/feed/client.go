// Package feed fetches raw alert records from the external incident feeds.
//
// Three fetch modes exist: the structured JSON endpoint, an HTML scrape of
// the provider's home page (the fallback when the endpoint fails), and a
// per-day history endpoint used for backfills. All transport and parse
// failures degrade to empty results; callers never see an exception from
// the latest-alerts path.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/saferoute/route-risk/internal/config"
	"github.com/saferoute/route-risk/internal/domain"
	"github.com/saferoute/route-risk/internal/observability"
)

var (
	// scriptRe captures the contents of each <script> block.
	scriptRe = regexp.MustCompile(`(?s)<script[^>]*>(.*?)</script>`)

	// alertDataRe extracts the array literal from an "alertData = [...]"
	// assignment. Non-greedy so it stops at the first closing bracket
	// followed by a semicolon.
	alertDataRe = regexp.MustCompile(`(?s)alertData\s*=\s*(\[.*?\])\s*;`)
)

// Client fetches raw alerts from the configured feed endpoints.
type Client struct {
	feedURL    string
	homeURL    string
	historyURL string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a feed client with the configured bounded timeout.
func NewClient(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		feedURL:    cfg.FeedURL,
		homeURL:    cfg.FeedHomeURL,
		historyURL: cfg.FeedHistoryURL,
		httpClient: &http.Client{Timeout: cfg.FeedTimeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchLatest returns the current raw alert batch. It tries the structured
// JSON endpoint first and falls back to scraping the home page's embedded
// script data. Every failure path yields an empty batch, never an error.
func (c *Client) FetchLatest(ctx context.Context) []domain.RawAlert {
	if c.feedURL != "" {
		alerts, err := c.fetchJSONArray(ctx, c.feedURL)
		if err == nil {
			return alerts
		}
		c.logger.Warn("structured feed failed, falling back to scrape", "url", c.feedURL, "error", err)
		c.metrics.FeedFallbacks.Inc()
	}

	return c.scrapeHomePage(ctx)
}

// FetchDay fetches the history endpoint for a single calendar day.
func (c *Client) FetchDay(ctx context.Context, date time.Time) ([]domain.RawAlert, error) {
	if c.historyURL == "" {
		return nil, fmt.Errorf("history endpoint not configured")
	}
	u := fmt.Sprintf("%s?date=%s", c.historyURL, url.QueryEscape(date.Format("2006-01-02")))
	return c.fetchJSONArray(ctx, u)
}

// fetchJSONArray GETs a URL and decodes the body as a JSON array of raw
// alerts. Non-200 status or a non-array body is an error.
func (c *Client) fetchJSONArray(ctx context.Context, fullURL string) ([]domain.RawAlert, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	var alerts []domain.RawAlert
	if err := json.Unmarshal(body, &alerts); err != nil {
		return nil, fmt.Errorf("parse feed body: %w", err)
	}

	c.metrics.RecordsFetched.Add(float64(len(alerts)))
	return alerts, nil
}

// scrapeHomePage extracts the alert array embedded in the home page's
// script block. It is itself the fallback, so any failure returns an
// empty batch with a log line.
func (c *Client) scrapeHomePage(ctx context.Context) []domain.RawAlert {
	if c.homeURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.homeURL, nil)
	if err != nil {
		c.logger.Warn("scrape request setup failed", "error", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("home page request failed", "url", c.homeURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("home page fetch failed", "url", c.homeURL, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("read home page failed", "error", err)
		return nil
	}

	raw := extractAlertData(string(body))
	if raw == "" {
		c.logger.Warn("no embedded alert data found on home page", "url", c.homeURL)
		return nil
	}

	var alerts []domain.RawAlert
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		c.logger.Warn("parse embedded alert data failed", "error", err)
		return nil
	}

	c.metrics.RecordsFetched.Add(float64(len(alerts)))
	return alerts
}

// extractAlertData returns the array literal from the first <script> block
// containing the alertData assignment marker, or "" when absent.
func extractAlertData(html string) string {
	for _, m := range scriptRe.FindAllStringSubmatch(html, -1) {
		script := m[1]
		match := alertDataRe.FindStringSubmatch(script)
		if match != nil {
			return match[1]
		}
	}
	return ""
}
