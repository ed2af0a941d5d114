package ports

import (
	"context"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// ConfigurationRepository persists per-user scoring configurations.
type ConfigurationRepository interface {
	// GetConfiguration returns the configuration owned by userID, or nil when none exists.
	GetConfiguration(ctx context.Context, userID string) (*domain.ScoringConfiguration, error)

	// UpsertConfiguration inserts or replaces the configuration for cfg.UserID.
	UpsertConfiguration(ctx context.Context, cfg domain.ScoringConfiguration) (*domain.ScoringConfiguration, error)

	Close() error
}

// CommentRepository handles the low-level persistence of activity entries.
type CommentRepository interface {
	SaveComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
}
