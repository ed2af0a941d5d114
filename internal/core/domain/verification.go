package domain

import "time"

// Verification error messages surfaced in RatingVerificationResult.Error.
const (
	VerificationErrNotFound    = "Vulnerability not found"
	VerificationErrMissingData = "Missing required data for rating calculation"
)

// RatingVerificationResult is the outcome of recomputing one stored rating.
// Error is set only on failure, in which case the remaining fields stay empty.
type RatingVerificationResult struct {
	IsValid            bool     `json:"isValid"`
	CurrentRating      *float64 `json:"currentRating,omitempty"`
	RecalculatedRating *float64 `json:"recalculatedRating,omitempty"`
	Difference         *float64 `json:"difference,omitempty"`
	VulnerabilityID    *int64   `json:"vulnerabilityId,omitempty"`
	CVEID              string   `json:"cveId,omitempty"`
	Title              string   `json:"title,omitempty"`
	Message            string   `json:"message,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Failed reports whether the verification could not be performed.
func (r RatingVerificationResult) Failed() bool {
	return r.Error != ""
}

// IsDiscrepancy reports whether the result is an actual rating mismatch on a
// known vulnerability, as opposed to a failure.
func (r RatingVerificationResult) IsDiscrepancy() bool {
	return !r.IsValid && !r.Failed() && r.VulnerabilityID != nil
}

// VerificationSummary aggregates a batch run. Discrepancies counts every
// result that is not valid, failures included; Failed breaks those out.
type VerificationSummary struct {
	Total         int                        `json:"total"`
	Valid         int                        `json:"valid"`
	Discrepancies int                        `json:"discrepancies"`
	Failed        int                        `json:"failed"`
	Results       []RatingVerificationResult `json:"results"`
}

// Summarize computes the aggregate counts for results.
func Summarize(results []RatingVerificationResult) VerificationSummary {
	s := VerificationSummary{
		Total:   len(results),
		Results: results,
	}
	if s.Results == nil {
		s.Results = []RatingVerificationResult{}
	}
	for _, r := range results {
		switch {
		case r.IsValid:
			s.Valid++
		case r.Failed():
			s.Discrepancies++
			s.Failed++
		default:
			s.Discrepancies++
		}
	}
	return s
}

// VerificationReport is a rendered batch verification for export.
type VerificationReport struct {
	ID                       string               `json:"id"`
	GeneratedAt              time.Time            `json:"generatedAt"`
	UserID                   string               `json:"userId"`
	Configuration            ScoringConfiguration `json:"configuration"`
	ConfigurationFingerprint string               `json:"configurationFingerprint"`
	Summary                  VerificationSummary  `json:"summary"`
}
