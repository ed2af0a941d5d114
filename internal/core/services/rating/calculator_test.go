package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

func TestCalculateRating(t *testing.T) {
	defaults := domain.DefaultScoringConfiguration("").Weights()

	tests := []struct {
		name       string
		cvss       float64
		bio        float64
		human      float64
		soleSource bool
		weights    domain.ScoringWeights
		expected   float64
	}{
		{
			name:     "Zero inputs",
			weights:  defaults,
			expected: 0.0,
		},
		{
			name:     "Default weights, no sole source",
			cvss:     9.5,
			bio:      0.98,
			human:    9.5,
			weights:  defaults,
			expected: 9.62,
		},
		{
			name:       "Sole source amplification is clamped",
			cvss:       9.5,
			bio:        0.98,
			human:      9.5,
			soleSource: true,
			weights:    defaults,
			expected:   10.0,
		},
		{
			name:       "Sole source below the ceiling",
			cvss:       4.0,
			bio:        0.4,
			human:      4.0,
			soleSource: true,
			weights:    defaults,
			expected:   6.0,
		},
		{
			name:     "CVSS only",
			cvss:     6.5,
			bio:      0.65,
			human:    6.5,
			weights:  domain.ScoringWeights{CVSSWeight: 1.0, SoleSourceMultiplier: 1.0},
			expected: 6.5,
		},
		{
			name:     "Bio relevance rescaled to 0-10",
			bio:      0.5,
			weights:  domain.ScoringWeights{BioRelevanceWeight: 1.0, SoleSourceMultiplier: 1.0},
			expected: 5.0,
		},
		{
			name:     "Out of range inputs are not rejected",
			cvss:     50,
			weights:  defaults,
			expected: 10.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRating(tt.cvss, tt.bio, tt.human, tt.soleSource, tt.weights)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestCalculateRating_Bounds(t *testing.T) {
	w := domain.DefaultScoringConfiguration("").Weights()

	for cvss := 0.0; cvss <= 10.0; cvss += 0.5 {
		for bio := 0.0; bio <= 1.0; bio += 0.1 {
			for _, sole := range []bool{false, true} {
				got := CalculateRating(cvss, bio, cvss, sole, w)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, MaxRating)
			}
		}
	}
}

func TestCalculateRating_SoleSourceNeverLowers(t *testing.T) {
	w := domain.DefaultScoringConfiguration("").Weights()

	for _, cvss := range []float64{0, 2.5, 6.5, 9.8} {
		plain := CalculateRating(cvss, 0.7, cvss, false, w)
		sole := CalculateRating(cvss, 0.7, cvss, true, w)
		assert.GreaterOrEqual(t, sole, plain, "cvss=%v", cvss)
	}
}

func TestCalculateRating_Monotonic(t *testing.T) {
	w := domain.DefaultScoringConfiguration("").Weights()

	prev := -1.0
	for cvss := 0.0; cvss <= 10.0; cvss += 1.0 {
		got := CalculateRating(cvss, 0.5, 5.0, false, w)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{10.0, "Critical"},
		{8.0, "Critical"},
		{7.9, "High"},
		{6.0, "High"},
		{5.5, "Medium"},
		{4.0, "Medium"},
		{3.9, "Low"},
		{0.0, "Low"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RiskLevel(tt.score), "score %.1f", tt.score)
	}
}
