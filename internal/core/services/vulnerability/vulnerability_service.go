package vulnerability

import (
	"context"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// VulnerabilityService exposes the catalogue read paths.
type VulnerabilityService struct {
	vulns   ports.VulnerabilityRepository
	configs ports.ConfigurationReader
}

func NewVulnerabilityService(vulns ports.VulnerabilityRepository, configs ports.ConfigurationReader) *VulnerabilityService {
	return &VulnerabilityService{vulns: vulns, configs: configs}
}

// List returns the catalogue newest first, optionally restricted to records
// at or above minBioRelevance.
func (s *VulnerabilityService) List(ctx context.Context, minBioRelevance *float64) ([]domain.VulnerabilityRecord, error) {
	return s.vulns.List(ctx, domain.VulnerabilityFilter{MinBioRelevance: minBioRelevance, NewestFirst: true})
}

// ListForUser applies the bio relevance threshold of the user's configuration.
func (s *VulnerabilityService) ListForUser(ctx context.Context, userID string) ([]domain.VulnerabilityRecord, error) {
	threshold, err := s.Threshold(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, &threshold)
}

// Get returns nil, nil when the id is unknown.
func (s *VulnerabilityService) Get(ctx context.Context, id int64) (*domain.VulnerabilityRecord, error) {
	return s.vulns.GetByID(ctx, id)
}

// Stats summarises the records relevant to userID.
func (s *VulnerabilityService) Stats(ctx context.Context, userID string) (domain.VulnerabilityStats, error) {
	threshold, err := s.Threshold(ctx, userID)
	if err != nil {
		return domain.VulnerabilityStats{}, err
	}
	return s.vulns.Stats(ctx, threshold)
}

// Threshold resolves the bio relevance threshold of userID, falling back to
// the default when the user has no configuration.
func (s *VulnerabilityService) Threshold(ctx context.Context, userID string) (float64, error) {
	if userID == "" {
		userID = domain.DefaultUserID
	}
	cfg, err := s.configs.Lookup(ctx, userID)
	if err != nil {
		return 0, err
	}
	if cfg == nil {
		return domain.DefaultBioRelevanceThreshold, nil
	}
	return cfg.BioRelevanceThreshold, nil
}
