package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// VulnerabilityHandler serves the vulnerability catalogue.
type VulnerabilityHandler struct {
	Service ports.VulnerabilityService
	logger  *slog.Logger
}

// NewVulnerabilityHandler creates a new VulnerabilityHandler
func NewVulnerabilityHandler(service ports.VulnerabilityService, logger *slog.Logger) *VulnerabilityHandler {
	return &VulnerabilityHandler{Service: service, logger: orDefault(logger)}
}

// GetVulnerabilities lists the catalogue. An explicit minBioRelevance wins
// over the threshold configured for userId.
func (h *VulnerabilityHandler) GetVulnerabilities(w http.ResponseWriter, r *http.Request) {
	minBio, err := queryFloat(r, "minBioRelevance")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid minBioRelevance")
		return
	}

	ctx := r.Context()
	var list interface{}
	switch user := r.URL.Query().Get("userId"); {
	case minBio != nil:
		list, err = h.Service.List(ctx, minBio)
	case user != "":
		if !validUserID(w, user) {
			return
		}
		list, err = h.Service.ListForUser(ctx, user)
	default:
		list, err = h.Service.List(ctx, nil)
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *VulnerabilityHandler) GetVulnerability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "Vulnerability not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VulnerabilityHandler) GetVulnerabilityStats(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if !validUserID(w, user) {
		return
	}

	stats, err := h.Service.Stats(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
