package domain

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DefaultUserID is used whenever a caller does not name a configuration owner.
const DefaultUserID = "default"

// Default scoring parameters. Every place that needs a default configuration
// goes through DefaultScoringConfiguration so the values live here only.
const (
	DefaultBioRelevanceWeight    = 0.4
	DefaultCVSSWeight            = 0.3
	DefaultSoleSourceMultiplier  = 1.5
	DefaultHumanImpactWeight     = 0.3
	DefaultBioRelevanceThreshold = 0.6
)

// Configuration bounds.
const (
	WeightSumTolerance      = 0.01
	MinSoleSourceMultiplier = 1.0
	MaxSoleSourceMultiplier = 3.0
)

// ScoringWeights is the subset of a configuration consumed by the rating formula.
type ScoringWeights struct {
	BioRelevanceWeight   float64 `json:"bioRelevanceWeight"`
	CVSSWeight           float64 `json:"cvssWeight"`
	HumanImpactWeight    float64 `json:"humanImpactWeight"`
	SoleSourceMultiplier float64 `json:"soleSourceMultiplier"`
}

// Sum returns the total of the three additive weights.
func (w ScoringWeights) Sum() float64 {
	return w.BioRelevanceWeight + w.CVSSWeight + w.HumanImpactWeight
}

// ScoringConfiguration is the per-user set of weights and thresholds governing
// the rating formula. At most one exists per UserID.
type ScoringConfiguration struct {
	ID                    uint      `json:"id"`
	UserID                string    `json:"userId"`
	BioRelevanceWeight    float64   `json:"bioRelevanceWeight"`
	CVSSWeight            float64   `json:"cvssWeight"`
	SoleSourceMultiplier  float64   `json:"soleSourceMultiplier"`
	HumanImpactWeight     float64   `json:"humanImpactWeight"`
	BioRelevanceThreshold float64   `json:"bioRelevanceThreshold"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// DefaultScoringConfiguration returns the hard-coded defaults owned by userID.
func DefaultScoringConfiguration(userID string) ScoringConfiguration {
	if userID == "" {
		userID = DefaultUserID
	}
	return ScoringConfiguration{
		UserID:                userID,
		BioRelevanceWeight:    DefaultBioRelevanceWeight,
		CVSSWeight:            DefaultCVSSWeight,
		SoleSourceMultiplier:  DefaultSoleSourceMultiplier,
		HumanImpactWeight:     DefaultHumanImpactWeight,
		BioRelevanceThreshold: DefaultBioRelevanceThreshold,
	}
}

// Weights extracts the formula inputs.
func (c ScoringConfiguration) Weights() ScoringWeights {
	return ScoringWeights{
		BioRelevanceWeight:   c.BioRelevanceWeight,
		CVSSWeight:           c.CVSSWeight,
		HumanImpactWeight:    c.HumanImpactWeight,
		SoleSourceMultiplier: c.SoleSourceMultiplier,
	}
}

// Validate enforces the write-time invariants. The sum check runs before the
// range check so callers see the same message for an over-weighted request
// regardless of individual ranges.
func (c ScoringConfiguration) Validate() error {
	if math.Abs(c.Weights().Sum()-1.0) > WeightSumTolerance {
		return &ValidationError{Message: "Weights must sum to 1.0"}
	}

	if !inUnitRange(c.BioRelevanceWeight) ||
		!inUnitRange(c.CVSSWeight) ||
		!inUnitRange(c.HumanImpactWeight) ||
		c.SoleSourceMultiplier < MinSoleSourceMultiplier || c.SoleSourceMultiplier > MaxSoleSourceMultiplier ||
		!inUnitRange(c.BioRelevanceThreshold) {
		return &ValidationError{Message: "Invalid parameter values"}
	}

	return nil
}

// Fingerprint identifies the parameter set, independent of owner and timestamp.
// Two configurations with equal parameters share a fingerprint.
func (c ScoringConfiguration) Fingerprint() string {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	for _, v := range []float64{
		c.BioRelevanceWeight,
		c.CVSSWeight,
		c.SoleSourceMultiplier,
		c.HumanImpactWeight,
		c.BioRelevanceThreshold,
	} {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
