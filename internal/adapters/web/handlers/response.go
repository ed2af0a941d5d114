package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// Limit request bodies to 1MB
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeServiceError maps domain errors to HTTP statuses. Anything unknown
// is a 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validation *domain.ValidationError
	var unknown *domain.UnknownVulnerabilityError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &unknown):
		writeError(w, http.StatusBadRequest, unknown.Error())
	case errors.Is(err, domain.ErrContentRequired):
		writeError(w, http.StatusBadRequest, "Content is required")
	case errors.Is(err, domain.ErrAuthorRequired):
		writeError(w, http.StatusBadRequest, "Author is required")
	case errors.Is(err, domain.ErrInvalidCommentType),
		errors.Is(err, domain.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrVulnerabilityNotFound):
		writeError(w, http.StatusNotFound, "Vulnerability not found")
	case errors.Is(err, domain.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "Comment not found")
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// userID reads the userId query parameter, defaulting to "default".
func userID(r *http.Request) string {
	if id := r.URL.Query().Get("userId"); id != "" {
		return id
	}
	return domain.DefaultUserID
}

// validUserID writes a 400 and returns false for a malformed userId.
func validUserID(w http.ResponseWriter, id string) bool {
	if !domain.IsValidUserID(id) {
		writeError(w, http.StatusBadRequest, "Invalid userId")
		return false
	}
	return true
}

// pathID parses the {id} route variable.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
