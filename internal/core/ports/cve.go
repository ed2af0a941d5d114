package ports

import (
	"context"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// VulnerabilityRepository defines the read/write surface of the vulnerability store.
type VulnerabilityRepository interface {
	// GetByID returns nil, nil when the id is unknown.
	GetByID(ctx context.Context, id int64) (*domain.VulnerabilityRecord, error)
	GetByCVE(ctx context.Context, cveID string) (*domain.VulnerabilityRecord, error)

	// ListIDs enumerates every stored id in ascending order.
	ListIDs(ctx context.Context) ([]int64, error)
	List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.VulnerabilityRecord, error)

	// Upsert inserts or refreshes a record keyed by CVE id. An existing AI rating is kept.
	Upsert(ctx context.Context, v domain.VulnerabilityRecord) (int64, error)

	// Review workflow
	UpdateUserRating(ctx context.Context, id int64, rating float64) error
	MarkReviewed(ctx context.Context, id int64, keepCurrentRating bool) error

	Stats(ctx context.Context, minBioRelevance float64) (domain.VulnerabilityStats, error)
	ReviewStats(ctx context.Context) (domain.ReviewStats, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
