package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/httputil"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/validator"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/service"
)

// maxBodyBytes bounds request bodies on the storefront API.
const maxBodyBytes = 1 << 20

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON body for adding a product. Price is loosely
// typed: numbers and numeric strings are accepted, anything else counts as 0.
type AddItemRequest struct {
	ProductID    string `json:"productId" validate:"required,notblank,max=128"`
	Name         string `json:"name" validate:"max=500"`
	Price        any    `json:"price"`
	Image        string `json:"image" validate:"max=2048"`
	StockCeiling *int   `json:"stockCeiling"`
	Quantity     *int   `json:"quantity"`
}

func (req AddItemRequest) toInput() domain.AddItemInput {
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	return domain.AddItemInput{
		ProductID:    req.ProductID,
		Name:         req.Name,
		UnitPrice:    domain.CoercePrice(req.Price),
		Image:        req.Image,
		StockCeiling: req.StockCeiling,
		Quantity:     qty,
	}
}

// UpdateQuantityRequest is the JSON body for setting a line's quantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetCart(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// GetItem handles GET /api/v1/cart/items/{productId}
func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	line, err := h.service.GetItem(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: line})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	snap, err := h.service.AddItem(r.Context(), sessionIDFromContext(r.Context()), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	snap, err := h.service.UpdateQuantity(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "productId"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.RemoveItem(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.ClearCart(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// decodeBody decodes a bounded JSON body keeping numbers as json.Number.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
