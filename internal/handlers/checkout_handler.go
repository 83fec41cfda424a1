package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

// CheckoutHandler handles checkout and confirmation API requests
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger,
	}
}

// GetCheckout handles GET /api/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	item, err := h.service.Begin(r.Context(), sess)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"item": item}, h.logger)
}

// Submit handles POST /api/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var form models.BillingForm
	if err := decodeJSON(w, r, &form); err != nil {
		h.logger.Warn("failed to decode checkout request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	order, err := h.service.Submit(r.Context(), sess, form)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"orderNumber": order.OrderNumber,
		"redirect":    "/confirmation",
	}, h.logger)
	h.logger.Info("order placed", "order_number", order.OrderNumber, "item_id", order.Item.ID)
}

// GetConfirmation handles GET /api/confirmation
// The order can be read once; later reads get 404.
func (h *CheckoutHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	conf, err := h.service.Confirm(r.Context(), sess)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, conf, h.logger)
}

func (h *CheckoutHandler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "Validation failed",
			"errors": verr.Fields,
		}, h.logger)
	case errors.Is(err, service.ErrMissingSelection):
		WriteJSON(w, http.StatusConflict, map[string]string{
			"error":    "No item selected",
			"redirect": "/",
		}, h.logger)
	case errors.Is(err, service.ErrMissingOrder):
		WriteError(w, http.StatusNotFound, "No order data found", h.logger)
	default:
		h.logger.Error("checkout failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
