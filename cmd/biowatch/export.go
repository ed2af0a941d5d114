package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/services/reporting"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		out    string
		userID string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a batch verification report as JSON, CSV or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "json", "csv", "pdf":
			default:
				return fmt.Errorf("unsupported format %q (want json, csv or pdf)", format)
			}

			application, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Reports.Generate(cmd.Context(), userID)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "csv":
				err = reporting.ExportCSV(w, report)
			case "pdf":
				err = application.PDF.ExportVerificationReport(w, report)
			default:
				err = reporting.ExportJSON(w, report)
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", "json", "report format: json, csv or pdf")
	f.StringVarP(&out, "out", "o", "", "output file (default stdout)")
	f.StringVar(&userID, "user", domain.DefaultUserID, "scoring configuration owner")
	return cmd
}
