package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
	"github.com/lcalzada-xor/biowatch/internal/core/services/reporting"
)

// Verification runs rating verification together with its audit side effect.
type Verification interface {
	Verify(ctx context.Context, vulnerabilityID int64, userID string) (domain.RatingVerificationResult, error)
	VerifyAll(ctx context.Context, userID string) (domain.VerificationSummary, error)
}

// VerificationNotifier is told about finished batch runs.
type VerificationNotifier interface {
	NotifyVerification(userID string, summary domain.VerificationSummary)
}

// PDFRenderer renders a report as PDF.
type PDFRenderer interface {
	ExportVerificationReport(w io.Writer, report *domain.VerificationReport) error
}

// VerificationHandler serves /api/airatingverification.
type VerificationHandler struct {
	Verification Verification
	Reports      ports.ReportService
	PDF          PDFRenderer
	Notifier     VerificationNotifier
	logger       *slog.Logger
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(verification Verification, reports ports.ReportService, pdf PDFRenderer, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{
		Verification: verification,
		Reports:      reports,
		PDF:          pdf,
		logger:       orDefault(logger),
	}
}

// HandleVerify recomputes the rating of one vulnerability. A result that
// carries an error is a 400.
func (h *VerificationHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user := userID(r)
	if !validUserID(w, user) {
		return
	}

	result, err := h.Verification.Verify(r.Context(), id, user)
	if err != nil {
		h.logger.Error("Rating verification failed", "vulnerability_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Failed() {
		writeError(w, http.StatusBadRequest, result.Error)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleVerifyAll recomputes every stored rating
func (h *VerificationHandler) HandleVerifyAll(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if !validUserID(w, user) {
		return
	}

	summary, err := h.Verification.VerifyAll(r.Context(), user)
	if err != nil {
		h.logger.Error("Batch verification failed", "user_id", user, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("Batch verification completed",
		"user_id", user,
		"total", summary.Total,
		"discrepancies", summary.Discrepancies,
	)
	if h.Notifier != nil {
		h.Notifier.NotifyVerification(user, summary)
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleReport renders a batch verification report as json, csv or pdf.
// Generating a report records nothing.
func (h *VerificationHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if !validUserID(w, user) {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" && format != "pdf" {
		writeError(w, http.StatusBadRequest, "Unsupported format: "+format)
		return
	}
	if format == "pdf" && h.PDF == nil {
		writeError(w, http.StatusBadRequest, "PDF export is not available")
		return
	}

	report, err := h.Reports.Generate(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	name := report.ID
	if len(name) > 8 {
		name = name[:8]
	}
	filename := fmt.Sprintf("biowatch_verification_%s.%s", name, format)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = reporting.ExportCSV(w, report)
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		err = h.PDF.ExportVerificationReport(w, report)
	default:
		w.Header().Set("Content-Type", "application/json")
		err = reporting.ExportJSON(w, report)
	}
	if err != nil {
		h.logger.Error("Report export error", "format", format, "error", err)
	}
}
