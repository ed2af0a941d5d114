package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load vulnerabilities from a JSON file, or the reference set when empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if file == "" {
				seeded, err := application.Seeds.EnsureSeeded(ctx)
				if err != nil {
					return err
				}
				if seeded {
					fmt.Fprintln(out, "Reference vulnerabilities loaded")
				} else {
					fmt.Fprintln(out, "Database already populated, nothing to do")
				}
				return nil
			}

			res, err := application.Seeds.LoadFromFile(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Loaded %d vulnerabilities (%d skipped)\n", res.Loaded, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of vulnerability records")
	return cmd
}
