package web

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

var (
	_ ports.ConfigurationService = (*MockConfigurationService)(nil)
	_ ports.AuditService         = (*MockAuditService)(nil)
	_ ports.ReviewService        = (*MockReviewService)(nil)
	_ ports.VulnerabilityService = (*MockVulnerabilityService)(nil)
	_ ports.ReportService        = (*MockReportService)(nil)
)

// MockConfigurationService is a mock of ports.ConfigurationService
type MockConfigurationService struct {
	mock.Mock
}

func (m *MockConfigurationService) Lookup(ctx context.Context, userID string) (*domain.ScoringConfiguration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoringConfiguration), args.Error(1)
}

func (m *MockConfigurationService) Get(ctx context.Context, userID string) (domain.ScoringConfiguration, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.ScoringConfiguration), args.Error(1)
}

func (m *MockConfigurationService) Update(ctx context.Context, userID string, cfg domain.ScoringConfiguration) (*domain.ScoringConfiguration, error) {
	args := m.Called(ctx, userID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoringConfiguration), args.Error(1)
}

func (m *MockConfigurationService) Reset(ctx context.Context, userID string) (*domain.ScoringConfiguration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoringConfiguration), args.Error(1)
}

// MockVerification is a mock of the verify-then-audit workflow
type MockVerification struct {
	mock.Mock
}

func (m *MockVerification) Verify(ctx context.Context, vulnerabilityID int64, userID string) (domain.RatingVerificationResult, error) {
	args := m.Called(ctx, vulnerabilityID, userID)
	return args.Get(0).(domain.RatingVerificationResult), args.Error(1)
}

func (m *MockVerification) VerifyAll(ctx context.Context, userID string) (domain.VerificationSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.VerificationSummary), args.Error(1)
}

// MockReportService is a mock of ports.ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, userID string) (*domain.VerificationReport, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationReport), args.Error(1)
}

// MockAuditService is a mock of ports.AuditService
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, c domain.Comment) (*domain.Comment, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockAuditService) RecordDiscrepancy(ctx context.Context, result domain.RatingVerificationResult) {
	m.Called(ctx, result)
}

func (m *MockAuditService) ListComments(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockAuditService) Feed(ctx context.Context, limit int) ([]domain.Activity, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockAuditService) DeleteComment(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReviewService is a mock of ports.ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, reviewedOnly bool) ([]domain.VulnerabilityRecord, error) {
	args := m.Called(ctx, reviewedOnly)
	return args.Get(0).([]domain.VulnerabilityRecord), args.Error(1)
}

func (m *MockReviewService) SetRating(ctx context.Context, id int64, rating float64, author string) error {
	args := m.Called(ctx, id, rating, author)
	return args.Error(0)
}

func (m *MockReviewService) MarkReviewed(ctx context.Context, id int64, keepCurrentRating bool, author string) error {
	args := m.Called(ctx, id, keepCurrentRating, author)
	return args.Error(0)
}

func (m *MockReviewService) Stats(ctx context.Context) (domain.ReviewStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ReviewStats), args.Error(1)
}

// MockVulnerabilityService is a mock of ports.VulnerabilityService
type MockVulnerabilityService struct {
	mock.Mock
}

func (m *MockVulnerabilityService) List(ctx context.Context, minBioRelevance *float64) ([]domain.VulnerabilityRecord, error) {
	args := m.Called(ctx, minBioRelevance)
	return args.Get(0).([]domain.VulnerabilityRecord), args.Error(1)
}

func (m *MockVulnerabilityService) ListForUser(ctx context.Context, userID string) ([]domain.VulnerabilityRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.VulnerabilityRecord), args.Error(1)
}

func (m *MockVulnerabilityService) Get(ctx context.Context, id int64) (*domain.VulnerabilityRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VulnerabilityRecord), args.Error(1)
}

func (m *MockVulnerabilityService) Stats(ctx context.Context, userID string) (domain.VulnerabilityStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.VulnerabilityStats), args.Error(1)
}
