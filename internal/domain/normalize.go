package domain

import (
	"context"
	"log/slog"
	"time"
)

// timestampLayouts are the absolute formats observed across feed
// generations, tried in order before falling back to RFC 3339.
// Values carry no zone and are treated as UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// RawAlert is a provider-shaped feed record. Field names vary between feed
// generations, so each logical field has a primary and an alternate spelling.
type RawAlert struct {
	Location  string   `json:"location"`
	Name      string   `json:"name"`
	Time      string   `json:"time"`
	Date      string   `json:"date"`
	Lat       *float64 `json:"lat"`
	Latitude  *float64 `json:"latitude"`
	Lon       *float64 `json:"lon"`
	Longitude *float64 `json:"longitude"`
	Kind      string   `json:"type"`
}

// NormalizeAlerts converts raw feed records into canonical incidents.
// Malformed records are dropped with a log line, never failing the batch:
// missing location, unparseable timestamp, invalid coordinates, and
// geocoding failures each drop only the offending record.
//
// Records without explicit coordinates are forward-geocoded. A geocoder
// failure drops the record — substituting (0,0) would place it at null
// island and corrupt every downstream proximity calculation.
func NormalizeAlerts(ctx context.Context, raws []RawAlert, geocoder Geocoder, logger *slog.Logger) []Incident {
	incidents := make([]Incident, 0, len(raws))

	for _, raw := range raws {
		location := firstNonEmpty(raw.Location, raw.Name)
		if location == "" {
			logger.Debug("dropping alert without location")
			continue
		}

		ts, ok := parseTimestamp(firstNonEmpty(raw.Time, raw.Date))
		if !ok {
			logger.Debug("dropping alert with unparseable timestamp", "location", location)
			continue
		}

		coord, ok := resolveCoordinate(ctx, raw, location, geocoder, logger)
		if !ok {
			continue
		}

		kind := raw.Kind
		if kind == "" {
			kind = "alert"
		}

		incidents = append(incidents, Incident{
			Location: location,
			Lat:      coord.Lat,
			Lon:      coord.Lon,
			Time:     ts,
			Kind:     kind,
		})
	}

	return incidents
}

// parseTimestamp tries the known absolute layouts, then a generic RFC 3339
// parse. All values are interpreted as UTC.
func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// resolveCoordinate prefers explicit fields on the record (either spelling),
// falling back to forward geocoding. Returns false when the record should
// be dropped.
func resolveCoordinate(ctx context.Context, raw RawAlert, location string, geocoder Geocoder, logger *slog.Logger) (Coordinate, bool) {
	lat := firstCoord(raw.Lat, raw.Latitude)
	lon := firstCoord(raw.Lon, raw.Longitude)

	if lat != nil && lon != nil {
		coord := Coordinate{Lat: *lat, Lon: *lon}
		if err := coord.Validate(); err != nil {
			logger.Warn("dropping alert with invalid coordinates", "location", location, "error", err)
			return Coordinate{}, false
		}
		return coord, true
	}

	if geocoder == nil {
		logger.Debug("dropping alert without coordinates, no geocoder configured", "location", location)
		return Coordinate{}, false
	}

	coord, err := geocoder.Geocode(ctx, location)
	if err != nil {
		logger.Warn("dropping alert, geocoding failed", "location", location, "error", err)
		return Coordinate{}, false
	}
	if err := coord.Validate(); err != nil {
		logger.Warn("dropping alert, geocoder returned invalid coordinates", "location", location, "error", err)
		return Coordinate{}, false
	}
	return coord, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstCoord(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
