package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/biowatch/internal/adapters/web/middleware"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RateLimitMiddleware(s.limiter))

	// Scoring configuration
	api.HandleFunc("/ownai", s.ConfigHandler.HandleGetConfig).Methods(http.MethodGet)
	api.HandleFunc("/ownai", s.ConfigHandler.HandleUpdateConfig).Methods(http.MethodPut)
	api.HandleFunc("/ownai/reset", s.ConfigHandler.HandleResetConfig).Methods(http.MethodPost)

	// Rating verification
	api.HandleFunc("/airatingverification/verify/{id}", s.VerificationHandler.HandleVerify).Methods(http.MethodPost)
	api.HandleFunc("/airatingverification/verify-all", s.VerificationHandler.HandleVerifyAll).Methods(http.MethodPost)
	api.HandleFunc("/airatingverification/report", s.VerificationHandler.HandleReport).Methods(http.MethodGet)

	// Vulnerability catalogue
	api.HandleFunc("/vulnerabilities", s.VulnerabilityHandler.GetVulnerabilities).Methods(http.MethodGet)
	api.HandleFunc("/vulnerabilities/stats", s.VulnerabilityHandler.GetVulnerabilityStats).Methods(http.MethodGet)
	api.HandleFunc("/vulnerabilities/{id:[0-9]+}", s.VulnerabilityHandler.GetVulnerability).Methods(http.MethodGet)

	// Comments and activity
	api.HandleFunc("/comments", s.CommentHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/comments", s.CommentHandler.HandleCreate).Methods(http.MethodPost)
	api.HandleFunc("/comments/activity", s.CommentHandler.HandleActivity).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id:[0-9]+}", s.CommentHandler.HandleDelete).Methods(http.MethodDelete)

	// Review workflow
	api.HandleFunc("/pasttrends", s.ReviewHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/pasttrends/stats", s.ReviewHandler.HandleStats).Methods(http.MethodGet)
	api.HandleFunc("/pasttrends/{id:[0-9]+}/rating", s.ReviewHandler.HandleSetRating).Methods(http.MethodPut)
	api.HandleFunc("/pasttrends/{id:[0-9]+}/review", s.ReviewHandler.HandleMarkReviewed).Methods(http.MethodPut)

	// Static catalogues
	api.HandleFunc("/datasources", s.CatalogHandler.HandleDataSources).Methods(http.MethodGet)
	api.HandleFunc("/datasources/{id:[0-9]+}/validation", s.CatalogHandler.HandleSourceValidation).Methods(http.MethodGet)
	api.HandleFunc("/support/tickets", s.CatalogHandler.HandleTickets).Methods(http.MethodGet)
	api.HandleFunc("/support/tickets", s.CatalogHandler.HandleCreateTicket).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return middleware.Logging(s.logger)(r)
}
