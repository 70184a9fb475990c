package risk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/saferoute/route-risk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mapGeocoder struct {
	coords map[string]domain.Coordinate
}

func (g *mapGeocoder) Geocode(_ context.Context, query string) (domain.Coordinate, error) {
	coord, ok := g.coords[query]
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("no geocoding results for %q", query)
	}
	return coord, nil
}

type fakeRoutes struct {
	route  domain.Route
	called bool
}

func (r *fakeRoutes) FetchRoute(_ context.Context, _, _ domain.Coordinate) (domain.Route, error) {
	r.called = true
	return r.route, nil
}

type memLoader struct {
	incidents []domain.Incident
	err       error
}

func (l *memLoader) Load() ([]domain.Incident, error) { return l.incidents, l.err }

func sheltersOK(shelters ...domain.Shelter) ShelterLoader {
	return func() ([]domain.Shelter, error) { return shelters, nil }
}

var testGeocoder = &mapGeocoder{coords: map[string]domain.Coordinate{
	"Tel Aviv":  {Lat: 32.0853, Lon: 34.7818},
	"Beersheba": {Lat: 31.2518, Lon: 34.7913},
	"Mitzpe":    {Lat: 30.6072, Lon: 34.8016},
}}

func TestAssessor_Assess_RatioPolicy(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fc)
	defer domain.SetClock(clockwork.NewRealClock())

	// One shelter at the first route point: 1 of 3 points covered.
	route := domain.Route{
		{Lat: 32.08, Lon: 34.78},
		{Lat: 31.5, Lon: 34.9},
		{Lat: 30.6, Lon: 34.8},
	}
	shelter := domain.Shelter{Name: "TLV central", Lat: 32.08, Lon: 34.78}
	recent := domain.Incident{
		Location: "Tel Aviv",
		Lat:      32.08, Lon: 34.781,
		Time: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		Kind: "rocket",
	}

	a := NewAssessor(
		testGeocoder,
		&fakeRoutes{route: route},
		&memLoader{incidents: []domain.Incident{recent}},
		sheltersOK(shelter),
		1000, 24*time.Hour, domain.PolicyRatio,
		discardLogger(),
	)

	result, err := a.Assess(context.Background(), "Tel Aviv", "Mitzpe")
	require.NoError(t, err)

	assert.Equal(t, domain.RiskHigh, result.Level, "2 of 3 exposed is 66.7%")
	assert.Equal(t, 2, result.Exposed)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.NearbyIncidents)
	assert.Contains(t, result.Explanation, "2 of 3")
}

func TestAssessor_Assess_AbsolutePolicy(t *testing.T) {
	// 3 route points, no shelters: 3 exposed, which is <= 10, and no
	// incidents, so the absolute policy says LOW where ratio would say HIGH.
	route := domain.Route{
		{Lat: 32.08, Lon: 34.78},
		{Lat: 31.5, Lon: 34.9},
		{Lat: 30.6, Lon: 34.8},
	}

	a := NewAssessor(
		testGeocoder,
		&fakeRoutes{route: route},
		&memLoader{},
		sheltersOK(),
		1000, 24*time.Hour, domain.PolicyAbsolute,
		discardLogger(),
	)

	result, err := a.Assess(context.Background(), "Tel Aviv", "Mitzpe")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, result.Level)
	assert.Equal(t, 3, result.Exposed)
}

func TestAssessor_Assess_GeocodeFailureYieldsUnknown(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"unknown start", "Atlantis", "Tel Aviv"},
		{"unknown end", "Tel Aviv", "Atlantis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := &fakeRoutes{}
			a := NewAssessor(
				testGeocoder, routes, &memLoader{}, sheltersOK(),
				1000, 24*time.Hour, domain.PolicyRatio, discardLogger(),
			)

			result, err := a.Assess(context.Background(), tt.start, tt.end)
			require.NoError(t, err, "geocode failure degrades, never fails")
			assert.Equal(t, domain.RiskUnknown, result.Level)
			assert.Contains(t, result.Explanation, "Atlantis")
			assert.False(t, routes.called, "no route fetch without both endpoints")
		})
	}
}

func TestAssessor_Assess_EmptyRouteYieldsUnknown(t *testing.T) {
	a := NewAssessor(
		testGeocoder, &fakeRoutes{}, &memLoader{}, sheltersOK(),
		1000, 24*time.Hour, domain.PolicyRatio, discardLogger(),
	)

	result, err := a.Assess(context.Background(), "Tel Aviv", "Beersheba")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskUnknown, result.Level)
	assert.Equal(t, "Route retrieval failed.", result.Explanation)
}

func TestAssessor_Assess_DatasetErrorsSurface(t *testing.T) {
	route := domain.Route{{Lat: 32.08, Lon: 34.78}}

	t.Run("shelter catalog", func(t *testing.T) {
		a := NewAssessor(
			testGeocoder, &fakeRoutes{route: route}, &memLoader{},
			func() ([]domain.Shelter, error) { return nil, errors.New("missing catalog") },
			1000, 24*time.Hour, domain.PolicyRatio, discardLogger(),
		)

		_, err := a.Assess(context.Background(), "Tel Aviv", "Beersheba")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shelter catalog")
	})

	t.Run("incident dataset", func(t *testing.T) {
		a := NewAssessor(
			testGeocoder, &fakeRoutes{route: route},
			&memLoader{err: errors.New("corrupt dataset")}, sheltersOK(),
			1000, 24*time.Hour, domain.PolicyRatio, discardLogger(),
		)

		_, err := a.Assess(context.Background(), "Tel Aviv", "Beersheba")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "incident dataset")
	})
}
