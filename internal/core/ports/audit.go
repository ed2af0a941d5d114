package ports

import (
	"context"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// AuditService handles the activity trail: analyst comments and system actions.
type AuditService interface {
	// Record validates and persists a comment.
	Record(ctx context.Context, c domain.Comment) (*domain.Comment, error)

	// RecordDiscrepancy writes the verification audit entry for a result that
	// is a discrepancy. Failures are logged, never returned.
	RecordDiscrepancy(ctx context.Context, result domain.RatingVerificationResult)

	ListComments(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error)

	// Feed returns recent activity enriched with the referenced vulnerability.
	Feed(ctx context.Context, limit int) ([]domain.Activity, error)

	DeleteComment(ctx context.Context, id uint) error
}

// ActivityNotifier pushes newly recorded activity to live clients.
type ActivityNotifier interface {
	NotifyActivity(activity domain.Activity)
}
