package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/biowatch/internal/adapters/web"
	"github.com/lcalzada-xor/biowatch/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/biowatch/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// Options tunes the HTTP server.
type Options struct {
	Addr           string
	StaticDir      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Services are the core services exposed over HTTP.
type Services struct {
	Configs         ports.ConfigurationService
	Verification    handlers.Verification
	Reports         ports.ReportService
	PDF             handlers.PDFRenderer
	Audit           ports.AuditService
	Review          ports.ReviewService
	Vulnerabilities ports.VulnerabilityService
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr      string
	StaticDir string
	WSManager *web.WSManager

	ConfigHandler        *handlers.ConfigHandler
	VerificationHandler  *handlers.VerificationHandler
	VulnerabilityHandler *handlers.VulnerabilityHandler
	CommentHandler       *handlers.CommentHandler
	ReviewHandler        *handlers.ReviewHandler
	CatalogHandler       *handlers.CatalogHandler

	limiter *middleware.RateLimiter
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates a new web server.
func NewServer(opts Options, svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 20
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 40
	}

	wsManager := web.NewWSManager(opts.AllowedOrigins, logger)
	verification := handlers.NewVerificationHandler(svc.Verification, svc.Reports, svc.PDF, logger)
	verification.Notifier = wsManager

	return &Server{
		Addr:      opts.Addr,
		StaticDir: opts.StaticDir,
		WSManager: wsManager,

		ConfigHandler:        handlers.NewConfigHandler(svc.Configs, logger),
		VerificationHandler:  verification,
		VulnerabilityHandler: handlers.NewVulnerabilityHandler(svc.Vulnerabilities, logger),
		CommentHandler:       handlers.NewCommentHandler(svc.Audit, logger),
		ReviewHandler:        handlers.NewReviewHandler(svc.Review, logger),
		CatalogHandler:       handlers.NewCatalogHandler(),

		limiter: middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		logger:  logger,
	}
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "biowatch-server")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)
	go s.limiter.Run(ctx.Done(), time.Minute)

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Web server shutdown error", "error", err)
		}
	}()

	s.logger.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.WSManager.Wait()
	return nil
}
