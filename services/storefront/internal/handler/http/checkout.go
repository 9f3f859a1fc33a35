package http

import (
	"log/slog"
	"net/http"

	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/httputil"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/service"
)

// CheckoutHandler handles the checkout endpoint.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// Checkout handles POST /api/v1/checkout. The form is validated by the
// service so an empty cart is reported before any field errors.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in domain.CheckoutInput
	if err := decodeBody(w, r, &in); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	conf, err := h.service.PlaceOrder(r.Context(), sessionIDFromContext(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: conf})
}
