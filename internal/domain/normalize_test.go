package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result Coordinate
	err    error
	calls  int
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) (Coordinate, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(v float64) *float64 { return &v }

// --- tests ---

func TestNormalizeAlerts_ExplicitCoordinates(t *testing.T) {
	geo := &mockGeocoder{}
	raws := []RawAlert{
		{Location: "Tel Aviv", Time: "2024-05-23T14:35:00", Lat: floatPtr(32.08), Lon: floatPtr(34.78), Kind: "missile"},
	}

	incidents := NormalizeAlerts(context.Background(), raws, geo, discardLogger())

	require.Len(t, incidents, 1)
	assert.Equal(t, "Tel Aviv", incidents[0].Location)
	assert.Equal(t, 32.08, incidents[0].Lat)
	assert.Equal(t, 34.78, incidents[0].Lon)
	assert.Equal(t, time.Date(2024, 5, 23, 14, 35, 0, 0, time.UTC), incidents[0].Time)
	assert.Equal(t, "missile", incidents[0].Kind)
	assert.Equal(t, 0, geo.calls, "explicit coordinates must not trigger geocoding")
}

func TestNormalizeAlerts_AlternateFieldSpellings(t *testing.T) {
	raws := []RawAlert{
		{Name: "Haifa", Date: "2024-05-23 14:35:00", Latitude: floatPtr(32.79), Longitude: floatPtr(34.99)},
	}

	incidents := NormalizeAlerts(context.Background(), raws, nil, discardLogger())

	require.Len(t, incidents, 1)
	assert.Equal(t, "Haifa", incidents[0].Location)
	assert.Equal(t, 32.79, incidents[0].Lat)
	assert.Equal(t, 34.99, incidents[0].Lon)
}

func TestNormalizeAlerts_TimestampFormats(t *testing.T) {
	expected := time.Date(2024, 5, 23, 14, 35, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
	}{
		{"T-separated", "2024-05-23T14:35:00"},
		{"space-separated", "2024-05-23 14:35:00"},
		{"RFC 3339 with offset", "2024-05-23T14:35:00+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws := []RawAlert{
				{Location: "Tel Aviv", Time: tt.value, Lat: floatPtr(32.08), Lon: floatPtr(34.78)},
			}
			incidents := NormalizeAlerts(context.Background(), raws, nil, discardLogger())

			require.Len(t, incidents, 1)
			assert.True(t, incidents[0].Time.Equal(expected))
		})
	}
}

func TestNormalizeAlerts_DropsMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  RawAlert
	}{
		{"missing location", RawAlert{Time: "2024-05-23T14:35:00", Lat: floatPtr(32), Lon: floatPtr(34)}},
		{"missing timestamp", RawAlert{Location: "Tel Aviv", Lat: floatPtr(32), Lon: floatPtr(34)}},
		{"unparseable timestamp", RawAlert{Location: "Tel Aviv", Time: "23 May 2024 14:35", Lat: floatPtr(32), Lon: floatPtr(34)}},
		{"latitude out of range", RawAlert{Location: "Tel Aviv", Time: "2024-05-23T14:35:00", Lat: floatPtr(95), Lon: floatPtr(34)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incidents := NormalizeAlerts(context.Background(), []RawAlert{tt.raw}, nil, discardLogger())
			assert.Empty(t, incidents)
		})
	}
}

func TestNormalizeAlerts_GeocodingFallback(t *testing.T) {
	geo := &mockGeocoder{result: Coordinate{Lat: 32.08, Lon: 34.78}}
	raws := []RawAlert{
		{Location: "Tel Aviv", Time: "2024-05-23T14:35:00"},
	}

	incidents := NormalizeAlerts(context.Background(), raws, geo, discardLogger())

	require.Len(t, incidents, 1)
	assert.Equal(t, 32.08, incidents[0].Lat)
	assert.Equal(t, 34.78, incidents[0].Lon)
	assert.Equal(t, 1, geo.calls)
}

func TestNormalizeAlerts_GeocodingFailureDropsRecord(t *testing.T) {
	// A failed geocode must drop the record, never substitute (0,0).
	geo := &mockGeocoder{err: errors.New("no results")}
	raws := []RawAlert{
		{Location: "Nowhere", Time: "2024-05-23T14:35:00"},
	}

	incidents := NormalizeAlerts(context.Background(), raws, geo, discardLogger())
	assert.Empty(t, incidents)
}

func TestNormalizeAlerts_NoGeocoderDropsCoordinatelessRecords(t *testing.T) {
	raws := []RawAlert{
		{Location: "Tel Aviv", Time: "2024-05-23T14:35:00"},
	}

	incidents := NormalizeAlerts(context.Background(), raws, nil, discardLogger())
	assert.Empty(t, incidents)
}

func TestNormalizeAlerts_KindDefaultsToAlert(t *testing.T) {
	raws := []RawAlert{
		{Location: "Tel Aviv", Time: "2024-05-23T14:35:00", Lat: floatPtr(32.08), Lon: floatPtr(34.78)},
	}

	incidents := NormalizeAlerts(context.Background(), raws, nil, discardLogger())

	require.Len(t, incidents, 1)
	assert.Equal(t, "alert", incidents[0].Kind)
}

func TestNormalizeAlerts_BadRecordDoesNotFailBatch(t *testing.T) {
	raws := []RawAlert{
		{Location: "Tel Aviv", Time: "2024-05-23T14:35:00", Lat: floatPtr(32.08), Lon: floatPtr(34.78)},
		{Time: "2024-05-23T15:00:00"}, // no location — dropped
		{Location: "Haifa", Time: "2024-05-23T16:00:00", Lat: floatPtr(32.79), Lon: floatPtr(34.99)},
	}

	incidents := NormalizeAlerts(context.Background(), raws, nil, discardLogger())

	require.Len(t, incidents, 2)
	assert.Equal(t, "Tel Aviv", incidents[0].Location)
	assert.Equal(t, "Haifa", incidents[1].Location)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"T-separated", "2024-05-23T14:35:00", true},
		{"space-separated", "2024-05-23 14:35:00", true},
		{"RFC 3339 zulu", "2024-05-23T14:35:00Z", true},
		{"RFC 3339 offset", "2024-05-23T14:35:00+03:00", true},
		{"empty", "", false},
		{"date only", "2024-05-23", false},
		{"prose date", "23 May 2024 14:35", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseTimestamp(tt.value)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
