package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// ReportGenerator builds verification reports. Generating a report runs a
// batch verification but records no activity.
type ReportGenerator struct {
	verifier ports.RatingVerifier
	configs  ports.ConfigurationReader
	now      func() time.Time
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(verifier ports.RatingVerifier, configs ports.ConfigurationReader) *ReportGenerator {
	return &ReportGenerator{
		verifier: verifier,
		configs:  configs,
		now:      time.Now,
	}
}

// Generate verifies every stored rating against the configuration of userID
// and packages the outcome.
func (g *ReportGenerator) Generate(ctx context.Context, userID string) (*domain.VerificationReport, error) {
	if userID == "" {
		userID = domain.DefaultUserID
	}

	cfg, err := g.configs.Lookup(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	effective := domain.DefaultScoringConfiguration(userID)
	if cfg != nil {
		effective = *cfg
	}

	results, err := g.verifier.VerifyAllRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ratings: %w", err)
	}

	return &domain.VerificationReport{
		ID:                       uuid.New().String(),
		GeneratedAt:              g.now().UTC(),
		UserID:                   userID,
		Configuration:            effective,
		ConfigurationFingerprint: effective.Fingerprint(),
		Summary:                  domain.Summarize(results),
	}, nil
}
