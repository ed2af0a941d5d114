package handlers

import (
	"net/http"
	"strings"

	"github.com/lcalzada-xor/biowatch/internal/catalog"
)

// CatalogHandler serves the static data source and support desk catalogues.
type CatalogHandler struct {
	Desk *catalog.Desk
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{Desk: catalog.NewDesk()}
}

func (h *CatalogHandler) HandleDataSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.DataSources())
}

func (h *CatalogHandler) HandleSourceValidation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, catalog.Validation(int(id)))
}

func (h *CatalogHandler) HandleTickets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Tickets())
}

// HandleCreateTicket triages a support request. Tickets are not stored.
func (h *CatalogHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req catalog.TicketRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "Description is required")
		return
	}
	writeJSON(w, http.StatusCreated, h.Desk.Open(req))
}
