package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/catalog"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

// CatalogHandler handles catalog-related API requests
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

type filterRequest struct {
	Text string `json:"text"`
}

type sortRequest struct {
	Sort string `json:"sort"`
}

// GetCatalog handles GET /api/catalog
// With filter or sort query parameters they are applied immediately.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	if !q.Has("filter") && !q.Has("sort") {
		WriteJSON(w, http.StatusOK, h.service.Current(r.Context(), sess), h.logger)
		return
	}

	state, err := h.service.Query(r.Context(), sess, q.Get("filter"), q.Get("sort"))
	if err != nil {
		h.logger.Warn("invalid catalog query", "sort", q.Get("sort"), "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid sort key", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, state, h.logger)
}

// Regenerate handles POST /api/catalog/regenerate
func (h *CatalogHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, h.service.Visit(r.Context(), sess), h.logger)
}

// TypeFilter handles PUT /api/catalog/filter
// The filter applies once input stops changing for the debounce delay.
func (h *CatalogHandler) TypeFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var req filterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode filter request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	h.service.TypeFilter(r.Context(), sess, req.Text)
	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"filter":  req.Text,
		"pending": true,
	}, h.logger)
}

// SetSort handles PUT /api/catalog/sort
func (h *CatalogHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var req sortRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode sort request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	state, err := h.service.Sort(r.Context(), sess, req.Sort)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidSortKey) {
			WriteError(w, http.StatusBadRequest, "Invalid sort key", h.logger)
			return
		}
		h.logger.Error("failed to sort catalog", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, state, h.logger)
}

// SelectItem handles POST /api/catalog/select/{itemId}
// - 200: item copied to the session relay
// - 400: Invalid ID supplied
// - 404: item is not currently displayed
func (h *CatalogHandler) SelectItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	id, err := itemIDParam(r)
	if err != nil {
		h.logger.Warn("invalid item ID format", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	item, err := h.service.Select(r.Context(), sess, id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			h.logger.Info("item not found", "itemId", id)
			WriteError(w, http.StatusNotFound, "Item not found", h.logger)
			return
		}
		h.logger.Error("failed to select item", "itemId", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"item":     item,
		"redirect": "/checkout",
	}, h.logger)
}
