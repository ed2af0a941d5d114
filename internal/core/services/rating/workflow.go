package rating

import (
	"context"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// DiscrepancyRecorder is the audit side of a verification request.
type DiscrepancyRecorder interface {
	RecordDiscrepancy(ctx context.Context, result domain.RatingVerificationResult)
}

// Workflow is what user-facing callers (HTTP, gRPC, CLI) run: verification
// followed by a best-effort audit entry for every discrepancy.
type Workflow struct {
	verifier ports.RatingVerifier
	recorder DiscrepancyRecorder
}

// NewWorkflow creates a workflow that reports discrepancies to recorder.
func NewWorkflow(verifier ports.RatingVerifier, recorder DiscrepancyRecorder) *Workflow {
	return &Workflow{verifier: verifier, recorder: recorder}
}

// Verify checks one rating and records it when it is a discrepancy.
func (w *Workflow) Verify(ctx context.Context, vulnerabilityID int64, userID string) (domain.RatingVerificationResult, error) {
	result, err := w.verifier.VerifyRating(ctx, vulnerabilityID, userID)
	if err != nil {
		return result, err
	}
	w.recorder.RecordDiscrepancy(ctx, result)
	return result, nil
}

// VerifyAll checks every rating, records each discrepancy and summarizes the batch.
func (w *Workflow) VerifyAll(ctx context.Context, userID string) (domain.VerificationSummary, error) {
	results, err := w.verifier.VerifyAllRatings(ctx, userID)
	if err != nil {
		return domain.VerificationSummary{}, err
	}
	for _, r := range results {
		w.recorder.RecordDiscrepancy(ctx, r)
	}
	return domain.Summarize(results), nil
}
