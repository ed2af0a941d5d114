package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// ConfigHandler serves the per-user scoring configuration (/api/ownai).
type ConfigHandler struct {
	Service ports.ConfigurationService
	logger  *slog.Logger
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(service ports.ConfigurationService, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		Service: service,
		logger:  orDefault(logger),
	}
}

type updateConfigRequest struct {
	BioRelevanceWeight    float64 `json:"bioRelevanceWeight"`
	CVSSWeight            float64 `json:"cvssWeight"`
	SoleSourceMultiplier  float64 `json:"soleSourceMultiplier"`
	HumanImpactWeight     float64 `json:"humanImpactWeight"`
	BioRelevanceThreshold float64 `json:"bioRelevanceThreshold"`
}

// HandleGetConfig returns the configuration, creating it with defaults on
// first read. The ETag is the parameter fingerprint.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if !validUserID(w, user) {
		return
	}

	cfg, err := h.Service.Get(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	etag := `"` + cfg.Fingerprint() + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleUpdateConfig validates and stores new parameters
func (h *ConfigHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if !validUserID(w, user) {
		return
	}

	var req updateConfigRequest
	if !decodeBody(w, r, &req) {
		return
	}

	saved, err := h.Service.Update(r.Context(), user, domain.ScoringConfiguration{
		UserID:                user,
		BioRelevanceWeight:    req.BioRelevanceWeight,
		CVSSWeight:            req.CVSSWeight,
		SoleSourceMultiplier:  req.SoleSourceMultiplier,
		HumanImpactWeight:     req.HumanImpactWeight,
		BioRelevanceThreshold: req.BioRelevanceThreshold,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("ETag", `"`+saved.Fingerprint()+`"`)
	writeMessage(w, "AI configuration updated successfully")
}

// HandleResetConfig restores the default parameters
func (h *ConfigHandler) HandleResetConfig(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if !validUserID(w, user) {
		return
	}

	if _, err := h.Service.Reset(r.Context(), user); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Configuration reset to defaults")
}
