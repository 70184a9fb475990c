// Package ors implements domain.RouteProvider against an
// OpenRouteService-shaped directions API.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/saferoute/route-risk/internal/domain"
)

// Client fetches driving routes from the directions API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a route client. The API key is an explicit constructor
// argument; config validates its presence before any call is made. The
// timeout bounds every route call.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchRoute returns the driving route between start and end as an ordered
// polyline. Transport failures, non-200 responses, and missing response
// structure all degrade to an empty route with a log line; the assessment
// path turns an empty route into an UNKNOWN result.
func (c *Client) FetchRoute(ctx context.Context, start, end domain.Coordinate) (domain.Route, error) {
	// The API speaks [lon, lat] order.
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{
			{start.Lon, start.Lat},
			{end.Lon, end.Lat},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("serialize route request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create route request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("route request failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Warn("route fetch failed", "status", resp.StatusCode, "body", string(respBody))
		return nil, nil
	}

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		c.logger.Warn("decode route response failed", "error", err)
		return nil, nil
	}

	if len(dr.Features) == 0 {
		c.logger.Warn("route response contains no features")
		return nil, nil
	}

	coords := dr.Features[0].Geometry.Coordinates
	route := make(domain.Route, 0, len(coords))
	for _, pair := range coords {
		if len(pair) < 2 {
			continue
		}
		route = append(route, domain.Coordinate{Lon: pair[0], Lat: pair[1]})
	}
	return route, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lon, lat] pairs
		} `json:"geometry"`
	} `json:"features"`
}
