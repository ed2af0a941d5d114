package rating

import (
	"math"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// MaxRating is the ceiling every computed rating is clamped to.
const MaxRating = 10.0

// CalculateRating computes the AI rating for one vulnerability.
//
// cvss is on a 0-10 scale, bioRelevance on 0-1 and humanImpact on 0-10. The
// bio and human terms are rescaled to 0-10 before weighting so all three
// contribute on the same scale. Sole-source vulnerabilities are amplified by
// the configured multiplier, and the result is capped at MaxRating. Inputs are
// not range-checked.
func CalculateRating(cvss, bioRelevance, humanImpact float64, soleSource bool, w domain.ScoringWeights) float64 {
	humanNorm := humanImpact / 10.0

	score := cvss*w.CVSSWeight +
		bioRelevance*10.0*w.BioRelevanceWeight +
		humanNorm*10.0*w.HumanImpactWeight

	if soleSource {
		score *= w.SoleSourceMultiplier
	}

	return math.Min(MaxRating, score)
}

// RiskLevel converts a rating to a human-readable level.
func RiskLevel(score float64) string {
	switch {
	case score >= 8.0:
		return domain.SeverityCritical
	case score >= 6.0:
		return domain.SeverityHigh
	case score >= 4.0:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
