package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/biowatch/internal/app"
	"github.com/lcalzada-xor/biowatch/internal/config"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "biowatch",
		Short:         "BioWatch tracks biotech-relevant vulnerabilities and audits their AI risk ratings.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "config file (default is ./biowatch.yaml)")
	pf.String("db", "", "SQLite database path (default ~/.biowatch/biowatch.db)")
	pf.Bool("debug", false, "enable debug logging")
	pf.Bool("seed", true, "seed the reference vulnerabilities into an empty database")
	pf.String("log-format", "json", "console log format: json or text")
	pf.String("log-file", "", "also write JSON logs to this rotated file")

	root.AddCommand(
		newServeCmd(opts),
		newVerifyCmd(opts),
		newSeedCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// loadApp resolves configuration for cmd and bootstraps the application.
// Callers must Close the result.
func loadApp(cmd *cobra.Command, opts *rootOptions) (*app.Application, error) {
	cfg, err := config.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	application, err := app.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}
