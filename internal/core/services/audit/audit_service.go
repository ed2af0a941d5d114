package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
	"github.com/lcalzada-xor/biowatch/internal/telemetry"
)

// DefaultFeedLimit is used when the activity feed is requested without a limit.
const DefaultFeedLimit = 50

// AuditService records and lists the activity trail.
type AuditService struct {
	repo     ports.CommentRepository
	vulns    ports.VulnerabilityRepository
	notifier ports.ActivityNotifier
	logger   *slog.Logger
}

func NewAuditService(repo ports.CommentRepository, vulns ports.VulnerabilityRepository, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{
		repo:   repo,
		vulns:  vulns,
		logger: logger.With("component", "audit_service"),
	}
}

// SetNotifier attaches the live feed. Safe to leave unset.
func (s *AuditService) SetNotifier(n ports.ActivityNotifier) {
	s.notifier = n
}

// Record validates c through the domain factory and persists it. A
// vulnerability reference must point at a stored vulnerability.
func (s *AuditService) Record(ctx context.Context, c domain.Comment) (*domain.Comment, error) {
	entry, err := domain.NewComment(c.Content, c.Author, c.VulnerabilityID, c.CommentType, c.Action)
	if err != nil {
		return nil, err
	}

	activity := domain.Activity{}
	if entry.VulnerabilityID != nil {
		vuln, err := s.vulns.GetByID(ctx, *entry.VulnerabilityID)
		if err != nil {
			return nil, fmt.Errorf("check vulnerability: %w", err)
		}
		if vuln == nil {
			return nil, &domain.UnknownVulnerabilityError{ID: *entry.VulnerabilityID}
		}
		activity.CVEID = &vuln.CVEID
		activity.VulnerabilityTitle = &vuln.Title
	}

	if err := s.repo.SaveComment(ctx, entry); err != nil {
		telemetry.ActivityRecords.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save comment: %w", err)
	}
	telemetry.ActivityRecords.WithLabelValues("ok").Inc()

	if s.notifier != nil {
		activity.Comment = *entry
		s.notifier.NotifyActivity(activity)
	}
	return entry, nil
}

// RecordBestEffort records c and logs, rather than returns, any failure.
func (s *AuditService) RecordBestEffort(ctx context.Context, c domain.Comment) {
	if _, err := s.Record(ctx, c); err != nil {
		s.logger.Debug("Failed to record activity", "action", c.Action, "error", err)
	}
}

// RecordDiscrepancy writes the verification entry for result when it is a
// discrepancy on a known vulnerability. Valid results and failures are ignored.
func (s *AuditService) RecordDiscrepancy(ctx context.Context, result domain.RatingVerificationResult) {
	if !result.IsDiscrepancy() {
		return
	}
	s.RecordBestEffort(ctx, *domain.NewVerificationComment(result))
}

func (s *AuditService) ListComments(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error) {
	return s.repo.ListComments(ctx, filter)
}

// Feed returns the newest activity first, enriched with the CVE id and title
// of the referenced vulnerability. Entries whose vulnerability is gone keep
// nil enrichment.
func (s *AuditService) Feed(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	comments, err := s.repo.ListComments(ctx, domain.CommentFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]*domain.VulnerabilityRecord)
	feed := make([]domain.Activity, 0, len(comments))
	for _, c := range comments {
		a := domain.Activity{Comment: c}
		if c.VulnerabilityID != nil {
			vuln, ok := seen[*c.VulnerabilityID]
			if !ok {
				vuln, err = s.vulns.GetByID(ctx, *c.VulnerabilityID)
				if err != nil {
					return nil, fmt.Errorf("enrich activity: %w", err)
				}
				seen[*c.VulnerabilityID] = vuln
			}
			if vuln != nil {
				a.CVEID = &vuln.CVEID
				a.VulnerabilityTitle = &vuln.Title
			}
		}
		feed = append(feed, a)
	}
	return feed, nil
}

func (s *AuditService) DeleteComment(ctx context.Context, id uint) error {
	return s.repo.DeleteComment(ctx, id)
}
