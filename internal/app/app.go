package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"

	"github.com/lcalzada-xor/biowatch/internal/adapters/cve"
	"github.com/lcalzada-xor/biowatch/internal/adapters/reporting"
	"github.com/lcalzada-xor/biowatch/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/biowatch/internal/adapters/web/server"
	"github.com/lcalzada-xor/biowatch/internal/config"
	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/services/audit"
	"github.com/lcalzada-xor/biowatch/internal/core/services/configuration"
	grpcserver "github.com/lcalzada-xor/biowatch/internal/core/services/grpc"
	"github.com/lcalzada-xor/biowatch/internal/core/services/rating"
	reportsvc "github.com/lcalzada-xor/biowatch/internal/core/services/reporting"
	"github.com/lcalzada-xor/biowatch/internal/core/services/review"
	"github.com/lcalzada-xor/biowatch/internal/core/services/vulnerability"
	"github.com/lcalzada-xor/biowatch/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config *config.Config
	Logger *slog.Logger

	Store           *storage.SQLiteAdapter
	Vulnerabilities *cve.SQLiteRepository
	Seeds           *cve.SeedLoader

	Configs       *configuration.ConfigurationService
	Verifier      *rating.Verifier
	Workflow      *rating.Workflow
	AuditService  *audit.AuditService
	Review        *review.ReviewService
	Catalogue     *vulnerability.VulnerabilityService
	Reports       *reportsvc.ReportGenerator
	PDF           *reporting.PDFExporter
	WebServer     *webserver.Server
	GrpcServer    *grpc.Server
	closers       []io.Closer
	traceShutdown func(context.Context) error
}

// New creates a new Application instance and bootstraps its components.
// Nothing listens until Run is called, so the CLI reuses New for one-shot
// commands.
func New(cfg *config.Config, console io.Writer) (*Application, error) {
	if console == nil {
		console = os.Stderr
	}
	logger, logCloser := telemetry.NewLogger(console, telemetry.LogOptions{
		Format:     cfg.Log.Format,
		Debug:      cfg.Debug,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		closers: []io.Closer{logCloser},
	}

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if app.Config.Tracing {
		shutdown, err := telemetry.InitTracer(os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to init tracer: %w", err)
		}
		app.traceShutdown = shutdown
	}

	if err := app.initStorage(); err != nil {
		return err
	}

	// 2. Domain Services
	app.initServices()

	// 3. Servers
	app.initServers()
	return nil
}

func (app *Application) initStorage() error {
	if dir := filepath.Dir(app.Config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath, storage.Options{Tracing: app.Config.Tracing})
	if err != nil {
		return fmt.Errorf("failed to init system storage: %w", err)
	}
	app.Store = store
	app.closers = append(app.closers, store)

	ctx := context.Background()
	if err := store.EnsureDefaultConfiguration(ctx, domain.DefaultScoringConfiguration(domain.DefaultUserID)); err != nil {
		return fmt.Errorf("failed to provision default configuration: %w", err)
	}

	vulns, err := cve.NewSQLiteRepository(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init vulnerability store: %w", err)
	}
	app.Vulnerabilities = vulns
	app.closers = append(app.closers, vulns)
	app.Seeds = cve.NewSeedLoader(vulns, app.Logger)

	if app.Config.Seed {
		seeded, err := app.Seeds.EnsureSeeded(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed vulnerabilities: %w", err)
		}
		if seeded {
			app.Logger.Info("Seeded reference vulnerabilities")
		}
	}
	return nil
}

func (app *Application) initServices() {
	app.Configs = configuration.NewConfigurationService(app.Store, app.Config.ConfigCacheTTL, app.Logger)
	app.AuditService = audit.NewAuditService(app.Store, app.Vulnerabilities, app.Logger)
	app.Verifier = rating.NewVerifier(app.Vulnerabilities, app.Configs, app.Logger)
	app.Workflow = rating.NewWorkflow(app.Verifier, app.AuditService)
	app.Review = review.NewReviewService(app.Vulnerabilities, app.AuditService, app.Logger)
	app.Catalogue = vulnerability.NewVulnerabilityService(app.Vulnerabilities, app.Configs)
	app.Reports = reportsvc.NewReportGenerator(app.Verifier, app.Configs)
	app.PDF = reporting.NewPDFExporter()
}

func (app *Application) initServers() {
	app.WebServer = webserver.NewServer(webserver.Options{
		Addr:           app.Config.Addr,
		StaticDir:      app.Config.StaticDir,
		AllowedOrigins: app.Config.AllowedOrigins,
		RateLimitRPS:   app.Config.RateLimit.RPS,
		RateLimitBurst: app.Config.RateLimit.Burst,
	}, webserver.Services{
		Configs:         app.Configs,
		Verification:    app.Workflow,
		Reports:         app.Reports,
		PDF:             app.PDF,
		Audit:           app.AuditService,
		Review:          app.Review,
		Vulnerabilities: app.Catalogue,
	}, app.Logger)

	// Bridge activity to WS
	app.AuditService.SetNotifier(app.WebServer.WSManager)

	app.GrpcServer = grpcserver.NewGrpcServer(app.Workflow, app.Configs, app.Logger)
}

// Run starts the servers and blocks until ctx is cancelled or one of them fails.
func (app *Application) Run(ctx context.Context) error {
	app.Logger.Info("Starting BioWatch components...")

	lis, err := net.Listen("tcp", app.Config.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen error: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	webErr := make(chan error, 1)
	go func() {
		webErr <- app.WebServer.Run(ctx)
	}()

	grpcErr := make(chan error, 1)
	go func() {
		app.Logger.Info("gRPC server listening", "addr", lis.Addr().String())
		if err := app.GrpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			grpcErr <- err
		}
	}()

	app.Logger.Info("BioWatch ready. Press Ctrl+C to terminate.")

	var runErr error
	webDone := false
	select {
	case <-ctx.Done():
		app.Logger.Info("Termination signal received")
	case err := <-webErr:
		webDone = true
		if err != nil {
			runErr = fmt.Errorf("web server error: %w", err)
		}
	case err := <-grpcErr:
		runErr = fmt.Errorf("grpc server error: %w", err)
	}
	cancel()

	stopped := make(chan struct{})
	go func() {
		app.GrpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		app.GrpcServer.Stop()
	}

	if !webDone {
		if err := <-webErr; err != nil && runErr == nil {
			runErr = fmt.Errorf("web server error: %w", err)
		}
	}
	return runErr
}

// Close releases storage, flushes traces and closes the log file.
func (app *Application) Close() error {
	var errs []error
	if app.traceShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, app.traceShutdown(ctx))
		cancel()
	}
	// Reverse order so the logger closes last.
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i].Close())
	}
	app.closers = nil
	return errors.Join(errs...)
}
