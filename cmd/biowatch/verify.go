package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		id     int64
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recalculate stored AI ratings and record discrepancies",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if id > 0 {
				result, err := application.Workflow.Verify(ctx, id, userID)
				if err != nil {
					return err
				}
				printResults(out, []domain.RatingVerificationResult{result})
				if result.Failed() {
					return fmt.Errorf("verification failed: %s", result.Error)
				}
				return nil
			}

			summary, err := application.Workflow.VerifyAll(ctx, userID)
			if err != nil {
				return err
			}
			printResults(out, summary.Results)
			fmt.Fprintf(out, "\n%d checked, %d valid, %d discrepancies (%d failed)\n",
				summary.Total, summary.Valid, summary.Discrepancies, summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", domain.DefaultUserID, "scoring configuration owner")
	cmd.Flags().Int64Var(&id, "id", 0, "verify a single vulnerability")
	return cmd
}

func printResults(w io.Writer, results []domain.RatingVerificationResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCVE\tCURRENT\tRECALCULATED\tDIFF\tSTATUS")
	for _, r := range results {
		status := "ok"
		switch {
		case r.Failed():
			status = "error: " + r.Error
		case !r.IsValid:
			status = "discrepancy"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			formatID(r.VulnerabilityID), orDash(r.CVEID),
			formatScore(r.CurrentRating, "%.1f"),
			formatScore(r.RecalculatedRating, "%.2f"),
			formatScore(r.Difference, "%.2f"),
			status)
	}
	tw.Flush()
}

func formatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func formatScore(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
