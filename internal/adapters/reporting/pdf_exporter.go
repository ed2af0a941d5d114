package reporting

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/services/rating"
)

// PDFExporter renders verification reports as PDF documents
type PDFExporter struct {
	Title string
}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{Title: "AI Rating Verification Report"}
}

// ExportVerificationReport writes report to w as a PDF
func (e *PDFExporter) ExportVerificationReport(w io.Writer, report *domain.VerificationReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addSummary(pdf, report.Summary)
	e.addConfiguration(pdf, report.Configuration)
	e.addResults(pdf, report.Summary.Results)
	e.addFooter(pdf, report)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.VerificationReport) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 14, e.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s UTC", report.GeneratedAt.UTC().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Configuration owner: %s", report.UserID), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

// addSummary draws the valid ratio banner followed by the batch counts
func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, s domain.VerificationSummary) {
	ratio := 1.0
	if s.Total > 0 {
		ratio = float64(s.Valid) / float64(s.Total)
	}
	r, g, b := e.getRatioColor(ratio)

	y := pdf.GetY()
	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, y, 170, 24, "F")

	pdf.SetFont("Arial", "B", 26)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+4)
	pdf.CellFormat(80, 16, fmt.Sprintf("%d/%d valid", s.Valid, s.Total), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(110, y+7)
	pdf.CellFormat(75, 10, fmt.Sprintf("%d discrepancies", s.Discrepancies), "", 0, "L", false, 0, "")

	pdf.SetY(y + 30)

	stats := []struct {
		label string
		value int
	}{
		{"Total", s.Total},
		{"Valid", s.Valid},
		{"Discrepancies", s.Discrepancies},
		{"Failed", s.Failed},
	}
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(35, 7, fmt.Sprintf("%d", stat.value), "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addConfiguration(pdf *gofpdf.Fpdf, c domain.ScoringConfiguration) {
	e.sectionTitle(pdf, "Scoring Configuration")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(60, 60, 60)
	lines := []string{
		fmt.Sprintf("Bio relevance weight: %.2f", c.BioRelevanceWeight),
		fmt.Sprintf("CVSS weight: %.2f", c.CVSSWeight),
		fmt.Sprintf("Human impact weight: %.2f", c.HumanImpactWeight),
		fmt.Sprintf("Sole source multiplier: %.2f", c.SoleSourceMultiplier),
		fmt.Sprintf("Bio relevance threshold: %.2f", c.BioRelevanceThreshold),
	}
	for _, line := range lines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addResults(pdf *gofpdf.Fpdf, results []domain.RatingVerificationResult) {
	e.sectionTitle(pdf, "Verification Results")

	if len(results) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No vulnerabilities verified", "", 1, "L", false, 0, "")
		return
	}

	header := func() {
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(32, 8, "CVE", "1", 0, "L", true, 0, "")
		pdf.CellFormat(62, 8, "Title", "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 8, "Current", "1", 0, "C", true, 0, "")
		pdf.CellFormat(24, 8, "Recalculated", "1", 0, "C", true, 0, "")
		pdf.CellFormat(16, 8, "Diff", "1", 0, "C", true, 0, "")
		pdf.CellFormat(16, 8, "Status", "1", 1, "C", true, 0, "")
	}
	header()

	pdf.SetFont("Arial", "", 8)
	for _, r := range results {
		if pdf.GetY() > 265 {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 8)
		}

		pdf.SetTextColor(60, 60, 60)
		cve := r.CVEID
		if cve == "" && r.VulnerabilityID != nil {
			cve = fmt.Sprintf("#%d", *r.VulnerabilityID)
		}
		pdf.CellFormat(32, 7, cve, "1", 0, "L", false, 0, "")
		pdf.CellFormat(62, 7, truncate(r.Title, 38), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, optionalScore(r.CurrentRating, "%.1f"), "1", 0, "C", false, 0, "")

		if r.RecalculatedRating != nil {
			cr, cg, cb := e.getRiskColor(rating.RiskLevel(*r.RecalculatedRating))
			pdf.SetTextColor(cr, cg, cb)
		}
		pdf.CellFormat(24, 7, optionalScore(r.RecalculatedRating, "%.2f"), "1", 0, "C", false, 0, "")

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(16, 7, optionalScore(r.Difference, "%.2f"), "1", 0, "C", false, 0, "")

		status, sr, sg, sb := "OK", 52, 199, 89
		switch {
		case r.Failed():
			status, sr, sg, sb = "ERROR", 150, 150, 150
		case !r.IsValid:
			status, sr, sg, sb = "DIFF", 220, 53, 69
		}
		pdf.SetTextColor(sr, sg, sb)
		pdf.CellFormat(16, 7, status, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
}

func (e *PDFExporter) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

// getRatioColor returns RGB color for the share of valid ratings
func (e *PDFExporter) getRatioColor(ratio float64) (r, g, b int) {
	switch {
	case ratio >= 0.9:
		return 52, 199, 89 // Green
	case ratio >= 0.7:
		return 255, 204, 0 // Yellow
	case ratio >= 0.5:
		return 255, 149, 0 // Orange
	default:
		return 220, 53, 69 // Red
	}
}

// getRiskColor returns RGB color for a risk level label
func (e *PDFExporter) getRiskColor(level string) (r, g, b int) {
	switch level {
	case "Critical":
		return 220, 53, 69
	case "High":
		return 255, 149, 0
	case "Medium":
		return 204, 153, 0
	default:
		return 52, 199, 89
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.VerificationReport) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := report.ID
	if len(id) > 8 {
		id = id[:8]
	}
	fp := report.ConfigurationFingerprint
	if len(fp) > 12 {
		fp = fp[:12]
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Report ID: %s | Configuration: %s", id, fp), "", 1, "C", false, 0, "")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func optionalScore(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
