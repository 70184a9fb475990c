package domain

import (
	"math"
	"time"
)

// ExposureStats aggregates shelter-coverage exposure over a route.
type ExposureStats struct {
	Exposed int `json:"exposed"`
	Total   int `json:"total"`
}

// Exposure computes per-point shelter coverage for a route. A point is
// exposed when its minimum distance to any hazard strictly exceeds
// thresholdMeters; a point exactly at the threshold is covered. An empty
// route yields zero counts.
//
// Linear scan over hazards per route point, O(route × hazards). A spatial
// index would help at scale but shelter catalogs are small.
func Exposure(route Route, hazards []Coordinate, thresholdMeters float64) ExposureStats {
	stats := ExposureStats{Total: len(route)}
	for _, point := range route {
		minDist := math.Inf(1)
		for _, h := range hazards {
			if d := Distance(point, h); d < minDist {
				minDist = d
			}
		}
		if minDist > thresholdMeters {
			stats.Exposed++
		}
	}
	return stats
}

// NearbyIncidents counts incidents within lookback of now that fall within
// thresholdMeters of any route point. Each incident counts at most once —
// the scan short-circuits on the first route point in range, so several
// nearby points never double-count the same incident.
func NearbyIncidents(route Route, incidents []Incident, thresholdMeters float64, lookback time.Duration) int {
	cutoff := clock.Now().Add(-lookback)
	count := 0

	for _, inc := range incidents {
		if inc.Time.Before(cutoff) {
			continue
		}
		for _, point := range route {
			if Distance(point, inc.Coordinate()) <= thresholdMeters {
				count++
				break
			}
		}
	}
	return count
}
