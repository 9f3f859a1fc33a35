package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/httputil"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/pagination"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/validator"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/domain"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/repository"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/service"
)

const maxBodyBytes = 1 << 20

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateOrderItemRequest is the JSON request body for an order line item.
type CreateOrderItemRequest struct {
	ProductID string          `json:"productId" validate:"required,notblank,max=128"`
	Name      string          `json:"name" validate:"max=500"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	Image     string          `json:"image" validate:"max=2048"`
}

// CustomerRequest is the customer block of an order submission.
type CustomerRequest struct {
	Name       string `json:"name" validate:"required,notblank,max=200"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Phone      string `json:"phone" validate:"required,notblank,max=20"`
	Address    string `json:"address" validate:"required,notblank,max=500"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
}

// CreateOrderRequest is the JSON request body sent by the storefront at checkout.
type CreateOrderRequest struct {
	Items          []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Customer       CustomerRequest          `json:"customer"`
	PaymentMethod  string                   `json:"paymentMethod" validate:"omitempty,oneof=cash_on_delivery bkash"`
	DeliveryOption string                   `json:"deliveryOption" validate:"required,oneof=inside_dhaka outside_dhaka"`
	DeliveryFee    decimal.Decimal          `json:"deliveryFee"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	Total          decimal.Decimal          `json:"total"`
	Notes          string                   `json:"notes" validate:"max=1000"`
	Status         string                   `json:"status" validate:"omitempty,eq=pending"`
}

func (req *CreateOrderRequest) toInput() service.CreateOrderInput {
	items := make([]service.CreateOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CreateOrderItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
	}

	return service.CreateOrderInput{
		Items: items,
		Customer: domain.Customer{
			Name:       req.Customer.Name,
			Email:      req.Customer.Email,
			Phone:      req.Customer.Phone,
			Address:    req.Customer.Address,
			City:       req.Customer.City,
			PostalCode: req.Customer.PostalCode,
		},
		PaymentMethod:  req.PaymentMethod,
		DeliveryOption: req.DeliveryOption,
		DeliveryFee:    req.DeliveryFee,
		Subtotal:       req.Subtotal,
		Total:          req.Total,
		Notes:          req.Notes,
		Status:         req.Status,
	}
}

// UpdateStatusRequest is the JSON request body for updating order status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered canceled"`
	Reason string `json:"reason" validate:"max=500"`
}

// CancelOrderRequest is the JSON request body for canceling an order.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// IntakeResponse is the envelope the storefront reads after submitting an order.
type IntakeResponse struct {
	Success bool              `json:"success"`
	Order   *domain.Order     `json:"order,omitempty"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// --- Handlers ---

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, IntakeResponse{Message: err.Error()})
		return
	}

	if err := validator.Validate(req); err != nil {
		resp := IntakeResponse{Message: "order validation failed"}
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			resp.Errors = valErr.Fields()
		}
		httputil.WriteJSON(w, http.StatusBadRequest, resp)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req.toInput())
	if err != nil {
		h.writeIntakeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IntakeResponse{
		Success: true,
		Order:   order,
		Message: "Order created successfully",
	})
}

func (h *OrderHandler) writeIntakeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	message := "failed to create order"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "order intake failed",
			slog.String("error", err.Error()),
		)
	}

	httputil.WriteJSON(w, status, IntakeResponse{Message: message})
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)
	filter := repository.OrderFilter{
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Page, filter.PerPage))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), id.String(), req.Status, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// CancelOrder handles POST /api/v1/orders/{id}/cancel. The body is optional.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.CancelOrder(r.Context(), id.String(), req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
