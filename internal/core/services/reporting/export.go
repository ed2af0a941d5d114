package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/services/rating"
)

// ExportJSON writes the report as indented JSON
func ExportJSON(w io.Writer, report *domain.VerificationReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// ExportCSV writes one row per verification result with headers
func ExportCSV(w io.Writer, report *domain.VerificationReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{
		"VulnerabilityID", "CVE", "Title",
		"CurrentRating", "RecalculatedRating", "Difference", "RiskLevel",
		"Valid", "Message", "Error",
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, r := range report.Summary.Results {
		riskLevel := ""
		if r.RecalculatedRating != nil {
			riskLevel = rating.RiskLevel(*r.RecalculatedRating)
		}
		row := []string{
			optionalID(r.VulnerabilityID),
			r.CVEID,
			r.Title,
			optionalScore(r.CurrentRating, "%.1f"),
			optionalScore(r.RecalculatedRating, "%.2f"),
			optionalScore(r.Difference, "%.2f"),
			riskLevel,
			strconv.FormatBool(r.IsValid),
			r.Message,
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func optionalScore(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}
