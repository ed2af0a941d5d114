package ports

import (
	"context"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// ConfigurationReader resolves the scoring configuration for a user without
// creating one. Nil means no configuration is stored.
type ConfigurationReader interface {
	Lookup(ctx context.Context, userID string) (*domain.ScoringConfiguration, error)
}

// ConfigurationService manages per-user scoring configurations.
type ConfigurationService interface {
	ConfigurationReader

	// Get returns the stored configuration, falling back to defaults.
	Get(ctx context.Context, userID string) (domain.ScoringConfiguration, error)
	Update(ctx context.Context, userID string, cfg domain.ScoringConfiguration) (*domain.ScoringConfiguration, error)
	Reset(ctx context.Context, userID string) (*domain.ScoringConfiguration, error)
}

// RatingVerifier recomputes stored AI ratings against a configuration.
type RatingVerifier interface {
	VerifyRating(ctx context.Context, vulnerabilityID int64, userID string) (domain.RatingVerificationResult, error)
	VerifyAllRatings(ctx context.Context, userID string) ([]domain.RatingVerificationResult, error)
}

// ReviewService drives the analyst review workflow.
type ReviewService interface {
	List(ctx context.Context, reviewedOnly bool) ([]domain.VulnerabilityRecord, error)
	SetRating(ctx context.Context, id int64, rating float64, author string) error
	MarkReviewed(ctx context.Context, id int64, keepCurrentRating bool, author string) error
	Stats(ctx context.Context) (domain.ReviewStats, error)
}

// VulnerabilityService exposes the vulnerability catalogue.
type VulnerabilityService interface {
	List(ctx context.Context, minBioRelevance *float64) ([]domain.VulnerabilityRecord, error)
	ListForUser(ctx context.Context, userID string) ([]domain.VulnerabilityRecord, error)
	Get(ctx context.Context, id int64) (*domain.VulnerabilityRecord, error)
	Stats(ctx context.Context, userID string) (domain.VulnerabilityStats, error)
}

// ReportService builds and renders batch verification reports.
type ReportService interface {
	Generate(ctx context.Context, userID string) (*domain.VerificationReport, error)
}
