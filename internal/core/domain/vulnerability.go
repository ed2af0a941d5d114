package domain

import "time"

// Severity labels as published by the upstream advisory.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// VulnerabilityRecord is a CVE-style entry enriched with biotech relevance.
// Nullable scoring fields are pointers; AIRating is set at ingestion and is
// never rewritten by rating verification.
type VulnerabilityRecord struct {
	ID    int64  `json:"id"`
	CVEID string `json:"cveId"` // e.g., "CVE-2024-1235"
	Title string `json:"title"`

	Description string `json:"description"`
	Severity    string `json:"severity"`

	// Scoring inputs
	CVSSScore         *float64 `json:"score"`             // 0-10
	BioRelevanceScore *float64 `json:"bioRelevanceScore"` // 0-1
	PriorityScore     *float64 `json:"priorityScore,omitempty"`
	SoleSourceFlag    bool     `json:"soleSourceFlag"`

	// Provenance
	Source            string `json:"source"`
	SourceCredibility string `json:"sourceCredibility"`

	// Impact narrative
	BiotechRelevance string    `json:"biotechRelevance"`
	BiologicalImpact string    `json:"biologicalImpact"`
	HumanImpact      string    `json:"humanImpact"`
	AffectedSystems  []string  `json:"affectedSystems"`
	DiscoveredDate   string    `json:"discoveredDate"`
	CreatedAt        time.Time `json:"createdAt"`

	// Stored outputs
	AIRating   *float64   `json:"aiRating"`
	UserRating *float64   `json:"userRating"`
	IsReviewed bool       `json:"isReviewed"`
	ReviewedAt *time.Time `json:"reviewedAt"`
}

// HasScoringInputs reports whether the record carries everything rating
// verification needs.
func (v VulnerabilityRecord) HasScoringInputs() bool {
	return v.CVSSScore != nil && v.BioRelevanceScore != nil && v.AIRating != nil
}

// VulnerabilityFilter narrows catalogue listings.
type VulnerabilityFilter struct {
	ReviewedOnly    bool
	MinBioRelevance *float64
	NewestFirst     bool
}

// VulnerabilityStats summarises the catalogue.
type VulnerabilityStats struct {
	TotalVulnerabilities int     `json:"totalVulnerabilities"`
	CriticalCount        int     `json:"criticalCount"`
	HighCount            int     `json:"highCount"`
	MediumCount          int     `json:"mediumCount"`
	LowCount             int     `json:"lowCount"`
	SoleSourceCount      int     `json:"soleSourceCount"`
	AvgScore             float64 `json:"avgScore"`
}

// ReviewStats summarises analyst review progress.
type ReviewStats struct {
	Total               int     `json:"total"`
	Reviewed            int     `json:"reviewed"`
	RatingChanged       int     `json:"ratingChanged"`
	AvgRatingDifference float64 `json:"avgRatingDifference"`
	ReviewPercentage    float64 `json:"reviewPercentage"`
}

// Float is a helper for building nullable scores.
func Float(v float64) *float64 {
	return &v
}
