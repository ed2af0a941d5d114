package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// ReviewHandler drives the analyst review workflow (/api/pasttrends).
type ReviewHandler struct {
	Service ports.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(service ports.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{Service: service, logger: orDefault(logger)}
}

type setRatingRequest struct {
	Rating *float64 `json:"rating"`
	Author string   `json:"author"`
}

type markReviewedRequest struct {
	KeepCurrentRating bool   `json:"keepCurrentRating"`
	Author            string `json:"author"`
}

func (h *ReviewHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	reviewedOnly := r.URL.Query().Get("reviewedOnly") == "true"

	vulns, err := h.Service.List(r.Context(), reviewedOnly)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vulns)
}

// HandleSetRating stores an analyst rating
func (h *ReviewHandler) HandleSetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req setRatingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Rating == nil {
		writeError(w, http.StatusBadRequest, "rating is required")
		return
	}

	if err := h.Service.SetRating(r.Context(), id, *req.Rating, req.Author); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Rating updated successfully")
}

// HandleMarkReviewed flags a vulnerability as reviewed. An empty body
// accepts the AI rating.
func (h *ReviewHandler) HandleMarkReviewed(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req markReviewedRequest
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}

	if err := h.Service.MarkReviewed(r.Context(), id, req.KeepCurrentRating, req.Author); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Marked as reviewed successfully")
}

func (h *ReviewHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
