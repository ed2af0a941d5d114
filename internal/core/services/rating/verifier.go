package rating

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
	"github.com/lcalzada-xor/biowatch/internal/telemetry"
)

// DiscrepancyTolerance is the largest |stored - recalculated| still considered valid.
const DiscrepancyTolerance = 0.5

var tracer = otel.Tracer("github.com/lcalzada-xor/biowatch/internal/core/services/rating")

// Verifier recomputes stored AI ratings and compares them with what is on
// record. It never writes to the vulnerability store.
type Verifier struct {
	vulns   ports.VulnerabilityRepository
	configs ports.ConfigurationReader
	logger  *slog.Logger
}

// NewVerifier creates a verifier reading ratings from vulns and weights from configs.
func NewVerifier(vulns ports.VulnerabilityRepository, configs ports.ConfigurationReader, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		vulns:   vulns,
		configs: configs,
		logger:  logger.With("component", "rating_verifier"),
	}
}

// VerifyRating checks the stored rating of one vulnerability against the
// configuration of userID, or the defaults when that user has none.
// Expected failures (unknown id, missing scoring data) are reported through
// the result; only store faults are returned as errors.
func (v *Verifier) VerifyRating(ctx context.Context, vulnerabilityID int64, userID string) (domain.RatingVerificationResult, error) {
	ctx, span := tracer.Start(ctx, "rating.VerifyRating")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("vulnerability.id", vulnerabilityID),
		attribute.String("user.id", userID),
	)

	result, err := v.verify(ctx, vulnerabilityID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.RatingVerifications.WithLabelValues("error").Inc()
		return domain.RatingVerificationResult{}, err
	}

	switch {
	case result.Failed():
		telemetry.RatingVerifications.WithLabelValues("error").Inc()
	case result.IsValid:
		telemetry.RatingVerifications.WithLabelValues("valid").Inc()
	default:
		telemetry.RatingVerifications.WithLabelValues("discrepancy").Inc()
	}
	if result.Difference != nil {
		telemetry.RatingDifference.Observe(*result.Difference)
	}
	span.SetAttributes(attribute.Bool("rating.valid", result.IsValid))

	return result, nil
}

func (v *Verifier) verify(ctx context.Context, vulnerabilityID int64, userID string) (domain.RatingVerificationResult, error) {
	vuln, err := v.vulns.GetByID(ctx, vulnerabilityID)
	if err != nil {
		return domain.RatingVerificationResult{}, fmt.Errorf("load vulnerability %d: %w", vulnerabilityID, err)
	}
	if vuln == nil {
		return domain.RatingVerificationResult{Error: domain.VerificationErrNotFound}, nil
	}
	if !vuln.HasScoringInputs() {
		return domain.RatingVerificationResult{Error: domain.VerificationErrMissingData}, nil
	}

	cfg, err := v.configuration(ctx, userID)
	if err != nil {
		return domain.RatingVerificationResult{}, fmt.Errorf("load scoring configuration for %q: %w", userID, err)
	}

	// No separate human-impact score is stored; the CVSS score stands in for it.
	cvss := *vuln.CVSSScore
	recalculated := CalculateRating(cvss, *vuln.BioRelevanceScore, cvss, vuln.SoleSourceFlag, cfg.Weights())
	current := *vuln.AIRating
	diff := math.Abs(current - recalculated)
	valid := diff <= DiscrepancyTolerance

	message := fmt.Sprintf("Rating verified: %.1f (recalculated: %.1f)", current, recalculated)
	if !valid {
		message = fmt.Sprintf("Rating discrepancy detected: Current %.1f vs Recalculated %.1f (diff: %.2f)", current, recalculated, diff)
		v.logger.Debug("Rating discrepancy", "vulnerability_id", vuln.ID, "cve_id", vuln.CVEID, "difference", diff)
	}

	id := vuln.ID
	return domain.RatingVerificationResult{
		IsValid:            valid,
		CurrentRating:      &current,
		RecalculatedRating: &recalculated,
		Difference:         &diff,
		VulnerabilityID:    &id,
		CVEID:              vuln.CVEID,
		Title:              vuln.Title,
		Message:            message,
	}, nil
}

// VerifyAllRatings verifies every stored vulnerability in id order. One
// result is produced per id whatever its outcome; a store fault aborts the
// batch and is returned as an error.
func (v *Verifier) VerifyAllRatings(ctx context.Context, userID string) ([]domain.RatingVerificationResult, error) {
	ctx, span := tracer.Start(ctx, "rating.VerifyAllRatings")
	defer span.End()

	ids, err := v.vulns.ListIDs(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list vulnerability ids: %w", err)
	}
	span.SetAttributes(attribute.Int("vulnerability.count", len(ids)))

	results := make([]domain.RatingVerificationResult, 0, len(ids))
	for _, id := range ids {
		result, err := v.VerifyRating(ctx, id, userID)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		results = append(results, result)
	}

	v.logger.Info("Batch verification finished", "user_id", userID, "total", len(results))
	return results, nil
}

func (v *Verifier) configuration(ctx context.Context, userID string) (domain.ScoringConfiguration, error) {
	if userID == "" {
		userID = domain.DefaultUserID
	}
	cfg, err := v.configs.Lookup(ctx, userID)
	if err != nil {
		return domain.ScoringConfiguration{}, err
	}
	if cfg == nil {
		return domain.DefaultScoringConfiguration(userID), nil
	}
	return *cfg, nil
}
