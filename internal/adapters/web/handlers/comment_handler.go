package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

const defaultActivityLimit = 50

// CommentHandler serves comments and the activity feed.
type CommentHandler struct {
	Service ports.AuditService
	logger  *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service ports.AuditService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{Service: service, logger: orDefault(logger)}
}

type createCommentRequest struct {
	Content         string             `json:"content"`
	Author          string             `json:"author"`
	VulnerabilityID *int64             `json:"vulnerabilityId"`
	CommentType     domain.CommentType `json:"commentType"`
	Action          string             `json:"action"`
}

// HandleList returns comments newest first
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := domain.CommentFilter{
		CommentType: domain.CommentType(r.URL.Query().Get("commentType")),
	}
	if raw := r.URL.Query().Get("vulnerabilityId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid vulnerabilityId")
			return
		}
		filter.VulnerabilityID = &id
	}

	comments, err := h.Service.ListComments(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleActivity returns the enriched activity feed
func (h *CommentHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	feed, err := h.Service.Feed(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// HandleCreate stores a new comment and answers 201 with it
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	saved, err := h.Service.Record(r.Context(), domain.Comment{
		Content:         req.Content,
		Author:          req.Author,
		VulnerabilityID: req.VulnerabilityID,
		CommentType:     req.CommentType,
		Action:          req.Action,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/comments/"+strconv.FormatUint(uint64(saved.ID), 10))
	writeJSON(w, http.StatusCreated, saved)
}

func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := h.Service.DeleteComment(r.Context(), uint(id)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Comment deleted successfully")
}
