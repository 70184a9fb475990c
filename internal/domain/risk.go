package domain

import "fmt"

// RiskLevel is the discrete outcome of a route assessment.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskUnknown  RiskLevel = "UNKNOWN"
)

// Policy selects which classification strategy an assessment uses.
// Both appear in the project's lineage as intentional directions, so the
// choice is an explicit configuration value rather than hard-coded.
type Policy string

const (
	// PolicyRatio classifies on the exposed/total ratio.
	PolicyRatio Policy = "ratio"
	// PolicyAbsolute classifies on absolute exposed and nearby-incident counts.
	PolicyAbsolute Policy = "absolute"
)

// ValidPolicy reports whether p names a known classification policy.
func ValidPolicy(p Policy) bool {
	return p == PolicyRatio || p == PolicyAbsolute
}

// RiskAssessment is the result of scoring one route. Produced fresh per
// call, never persisted.
type RiskAssessment struct {
	Level           RiskLevel `json:"risk_level"`
	Exposed         int       `json:"exposed_count"`
	Total           int       `json:"total_count"`
	NearbyIncidents int       `json:"nearby_incident_count"`
	Explanation     string    `json:"details"`
}

// Classify maps exposure statistics and the recent-incident count to a risk
// level under the given policy. A zero total (failed route fetch) always
// yields UNKNOWN, short-circuiting both policies.
func Classify(policy Policy, stats ExposureStats, nearbyIncidents int, thresholdMeters float64) RiskAssessment {
	if stats.Total == 0 {
		return RiskAssessment{
			Level:       RiskUnknown,
			Explanation: "Route retrieval failed.",
		}
	}

	result := RiskAssessment{
		Exposed:         stats.Exposed,
		Total:           stats.Total,
		NearbyIncidents: nearbyIncidents,
	}

	switch policy {
	case PolicyAbsolute:
		result.Level = classifyAbsolute(stats.Exposed, nearbyIncidents)
		result.Explanation = fmt.Sprintf(
			"%d of %d route points are beyond %gm from a shelter; %d recent incidents near the route.",
			stats.Exposed, stats.Total, thresholdMeters, nearbyIncidents,
		)
	default:
		ratio := float64(stats.Exposed) / float64(stats.Total)
		result.Level = classifyRatio(ratio)
		result.Explanation = fmt.Sprintf(
			"%d of %d route points are beyond %gm from a shelter (%.1f%% exposed).",
			stats.Exposed, stats.Total, thresholdMeters, ratio*100,
		)
	}
	return result
}

// classifyRatio: <0.2 LOW, <0.5 MODERATE, else HIGH. Exactly 0.2 is
// MODERATE and exactly 0.5 is HIGH.
func classifyRatio(ratio float64) RiskLevel {
	switch {
	case ratio < 0.2:
		return RiskLow
	case ratio < 0.5:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// classifyAbsolute uses strict greater-than at every boundary: 20 exposed
// points with no nearby incidents is MODERATE, 21 is HIGH.
func classifyAbsolute(exposed, nearby int) RiskLevel {
	switch {
	case exposed > 20 || nearby > 5:
		return RiskHigh
	case exposed > 10 || nearby > 0:
		return RiskModerate
	default:
		return RiskLow
	}
}
