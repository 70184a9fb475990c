// Package risk orchestrates a single route assessment: geocode the
// endpoints, fetch a driving route, and score it against shelter coverage
// and recent incidents.
package risk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saferoute/route-risk/internal/domain"
)

// IncidentLoader reads the persisted incident dataset.
type IncidentLoader interface {
	Load() ([]domain.Incident, error)
}

// ShelterLoader reads the shelter catalog.
type ShelterLoader func() ([]domain.Shelter, error)

// Assessor scores routes between named places.
type Assessor struct {
	geocoder  domain.Geocoder
	routes    domain.RouteProvider
	incidents IncidentLoader
	shelters  ShelterLoader
	threshold float64
	lookback  time.Duration
	policy    domain.Policy
	logger    *slog.Logger
}

// NewAssessor creates an Assessor. threshold is the shelter-coverage and
// incident-proximity radius in meters; lookback bounds how old an incident
// may be and still count as recent.
func NewAssessor(
	geocoder domain.Geocoder,
	routes domain.RouteProvider,
	incidents IncidentLoader,
	shelters ShelterLoader,
	threshold float64,
	lookback time.Duration,
	policy domain.Policy,
	logger *slog.Logger,
) *Assessor {
	return &Assessor{
		geocoder:  geocoder,
		routes:    routes,
		incidents: incidents,
		shelters:  shelters,
		threshold: threshold,
		lookback:  lookback,
		policy:    policy,
		logger:    logger,
	}
}

// Assess geocodes both place names, fetches a route between them, and
// classifies the route's risk. Geocoding failures and an empty route both
// degrade to an UNKNOWN assessment; only dataset read errors fail the call,
// since a silent empty dataset would understate risk.
func (a *Assessor) Assess(ctx context.Context, startName, endName string) (domain.RiskAssessment, error) {
	start, err := a.geocoder.Geocode(ctx, startName)
	if err != nil {
		a.logger.Warn("geocoding start failed", "place", startName, "error", err)
		return unknownAssessment(fmt.Sprintf("Could not locate %q.", startName)), nil
	}

	end, err := a.geocoder.Geocode(ctx, endName)
	if err != nil {
		a.logger.Warn("geocoding end failed", "place", endName, "error", err)
		return unknownAssessment(fmt.Sprintf("Could not locate %q.", endName)), nil
	}

	route, err := a.routes.FetchRoute(ctx, start, end)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("fetch route: %w", err)
	}

	shelters, err := a.shelters()
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("load shelter catalog: %w", err)
	}
	hazards := make([]domain.Coordinate, len(shelters))
	for i, s := range shelters {
		hazards[i] = s.Coordinate()
	}

	incidents, err := a.incidents.Load()
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("load incident dataset: %w", err)
	}

	stats := domain.Exposure(route, hazards, a.threshold)
	nearby := domain.NearbyIncidents(route, incidents, a.threshold, a.lookback)

	assessment := domain.Classify(a.policy, stats, nearby, a.threshold)
	a.logger.Info("route assessed",
		"from", startName,
		"to", endName,
		"points", stats.Total,
		"exposed", stats.Exposed,
		"nearby_incidents", nearby,
		"level", assessment.Level,
	)
	return assessment, nil
}

func unknownAssessment(explanation string) domain.RiskAssessment {
	return domain.RiskAssessment{
		Level:       domain.RiskUnknown,
		Explanation: explanation,
	}
}
