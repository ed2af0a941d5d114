package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, WebSocket and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			// Root Context with cancellation on Interrupt
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			application.Logger.Info("BioWatch starting", "version", Version)
			return application.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.String("addr", ":8080", "HTTP listen address")
	f.String("grpc-addr", ":9000", "gRPC listen address")
	f.String("static-dir", "", "serve static UI assets from this directory")
	f.Bool("tracing", false, "export OpenTelemetry spans to stdout")
	f.Float64("rate-limit-rps", 20, "per-client API requests per second")
	f.Int("rate-limit-burst", 40, "per-client API burst size")
	f.StringSlice("allowed-origins", nil, "WebSocket origins allowed in addition to same-origin")

	return cmd
}
