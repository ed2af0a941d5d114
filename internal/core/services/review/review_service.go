package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// ActivityRecorder is the subset of the audit service used by reviews.
type ActivityRecorder interface {
	RecordBestEffort(ctx context.Context, c domain.Comment)
}

// ReviewService drives the analyst review of past ratings. It only touches
// the user rating and review flags; the AI rating is never modified.
type ReviewService struct {
	vulns    ports.VulnerabilityRepository
	activity ActivityRecorder
	logger   *slog.Logger
}

func NewReviewService(vulns ports.VulnerabilityRepository, activity ActivityRecorder, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{
		vulns:    vulns,
		activity: activity,
		logger:   logger.With("component", "review_service"),
	}
}

// List returns vulnerabilities newest first, optionally only reviewed ones.
func (s *ReviewService) List(ctx context.Context, reviewedOnly bool) ([]domain.VulnerabilityRecord, error) {
	return s.vulns.List(ctx, domain.VulnerabilityFilter{ReviewedOnly: reviewedOnly, NewestFirst: true})
}

// SetRating records an analyst rating and marks the vulnerability reviewed.
func (s *ReviewService) SetRating(ctx context.Context, id int64, rating float64, author string) error {
	if rating < 0 || rating > 10 {
		return domain.ErrInvalidRating
	}
	if err := s.vulns.UpdateUserRating(ctx, id, rating); err != nil {
		return err
	}

	s.logger.Info("User rating updated", "vulnerability_id", id, "rating", rating)
	s.record(ctx, id, author, domain.CommentUpdate, domain.ActionRatingChanged,
		fmt.Sprintf("User rating set to %.1f", rating))
	return nil
}

// MarkReviewed flags the vulnerability as reviewed. Unless keepCurrentRating
// is set, a missing user rating is filled from the AI rating.
func (s *ReviewService) MarkReviewed(ctx context.Context, id int64, keepCurrentRating bool, author string) error {
	if err := s.vulns.MarkReviewed(ctx, id, keepCurrentRating); err != nil {
		return err
	}

	content := "Marked as reviewed"
	if !keepCurrentRating {
		content = "Marked as reviewed, AI rating accepted"
	}
	s.record(ctx, id, author, domain.CommentAction, domain.ActionReviewed, content)
	return nil
}

func (s *ReviewService) Stats(ctx context.Context) (domain.ReviewStats, error) {
	return s.vulns.ReviewStats(ctx)
}

func (s *ReviewService) record(ctx context.Context, id int64, author string, typ domain.CommentType, action, content string) {
	if s.activity == nil {
		return
	}
	if author == "" {
		author = domain.SystemReviewAuthor
	}
	s.activity.RecordBestEffort(ctx, domain.Comment{
		Content:         content,
		Author:          author,
		VulnerabilityID: &id,
		CommentType:     typ,
		Action:          action,
	})
}
