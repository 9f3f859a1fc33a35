package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/domain"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/repository"
)

// EventPublisher publishes order domain events. *event.Producer satisfies it.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error
	PublishOrderCanceled(ctx context.Context, orderID, reason string) error
}

// OrderService implements the business logic for order operations.
type OrderService struct {
	repo     repository.OrderRepository
	producer EventPublisher
	logger   *slog.Logger
}

// NewOrderService creates a new order service. producer may be nil.
func NewOrderService(repo repository.OrderRepository, producer EventPublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrderItemInput holds the parameters for an order line item.
type CreateOrderItemInput struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

// CreateOrderInput is an order as submitted by the storefront. The money
// fields are the client's figures and are checked against the items.
type CreateOrderInput struct {
	Items          []CreateOrderItemInput
	Customer       domain.Customer
	PaymentMethod  string
	DeliveryOption string
	DeliveryFee    decimal.Decimal
	Subtotal       decimal.Decimal
	Total          decimal.Decimal
	Notes          string
	Status         string
}

func (in *CreateOrderInput) validate() error {
	if len(in.Items) == 0 {
		return apperrors.InvalidInput("order must contain at least one item")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return apperrors.InvalidInput(fmt.Sprintf("items[%d].productId is required", i))
		}
		if it.Quantity < 1 {
			return apperrors.InvalidInput(fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
		if it.Price.IsNegative() {
			return apperrors.InvalidInput(fmt.Sprintf("items[%d].price must not be negative", i))
		}
		if !domain.IsValidAmount(it.Price) {
			return apperrors.InvalidInput(fmt.Sprintf("items[%d].price is out of range", i))
		}
	}

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"deliveryFee", in.DeliveryFee},
		{"subtotal", in.Subtotal},
		{"total", in.Total},
	}
	for _, a := range amounts {
		if !domain.IsValidAmount(a.value) {
			return apperrors.InvalidInput(a.field + " is out of range")
		}
	}

	c := in.Customer
	required := []struct{ field, value string }{
		{"customer.name", c.Name},
		{"customer.email", c.Email},
		{"customer.phone", c.Phone},
		{"customer.address", c.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.InvalidInput(r.field + " is required")
		}
	}

	if in.PaymentMethod != "" && !domain.IsValidPaymentMethod(in.PaymentMethod) {
		return apperrors.InvalidInput(fmt.Sprintf("unsupported payment method %q", in.PaymentMethod))
	}
	if in.Status != "" && in.Status != domain.OrderStatusPending {
		return apperrors.InvalidInput("new orders must have status pending")
	}
	return nil
}

// CreateOrder validates and stores an order submitted from checkout. The
// subtotal is recomputed from the items and the fee from the delivery
// option; a submission whose figures disagree is rejected.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	fee, ok := domain.DeliveryFee(input.DeliveryOption)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown delivery option %q", input.DeliveryOption))
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	items := make([]domain.OrderItem, len(input.Items))
	for i, it := range input.Items {
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: strings.TrimSpace(it.ProductID),
			Name:      strings.TrimSpace(it.Name),
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		}
	}

	payment := input.PaymentMethod
	if payment == "" {
		payment = domain.PaymentCashOnDelivery
	}

	order := &domain.Order{
		ID:     orderID,
		Status: domain.OrderStatusPending,
		Items:  items,
		Customer: domain.Customer{
			Name:       strings.TrimSpace(input.Customer.Name),
			Email:      strings.TrimSpace(input.Customer.Email),
			Phone:      strings.TrimSpace(input.Customer.Phone),
			Address:    strings.TrimSpace(input.Customer.Address),
			City:       strings.TrimSpace(input.Customer.City),
			PostalCode: strings.TrimSpace(input.Customer.PostalCode),
		},
		PaymentMethod:  payment,
		DeliveryOption: input.DeliveryOption,
		DeliveryFee:    fee,
		Notes:          strings.TrimSpace(input.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	order.Subtotal = order.ItemsSubtotal()
	order.Total = order.Subtotal.Add(fee)

	if !input.Subtotal.Equal(order.Subtotal) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("subtotal %s does not match items total %s", input.Subtotal, order.Subtotal))
	}
	if !input.DeliveryFee.Equal(fee) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("delivery fee %s does not match %s for %s", input.DeliveryFee, fee, input.DeliveryOption))
	}
	if !input.Total.Equal(order.Total) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("total %s does not equal subtotal plus delivery fee %s", input.Total, order.Total))
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
			// Do not fail the operation if event publishing fails.
			s.logger.ErrorContext(ctx, "failed to publish order.created event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("delivery_option", order.DeliveryOption),
		slog.String("total", order.Total.String()),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListOrders returns a filtered, paginated list of orders.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status filter %q", *filter.Status))
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateOrderStatus transitions the order to a new status with validation.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, newStatus string, reason string) (*domain.Order, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", newStatus, strings.Join(domain.ValidStatuses(), ", ")))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	if !order.CanTransitionTo(newStatus) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot transition from %q to %q", order.Status, newStatus))
	}

	oldStatus := order.Status
	if newStatus != domain.OrderStatusCanceled {
		reason = ""
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus, reason); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, newStatus); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
				slog.String("order_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	order.Status = newStatus
	if newStatus == domain.OrderStatusCanceled {
		order.CanceledReason = reason
	}

	return order, nil
}

// CancelOrder cancels an order with a reason, validating the transition.
func (s *OrderService) CancelOrder(ctx context.Context, id string, reason string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for cancel: %w", err)
	}

	if !order.CanTransitionTo(domain.OrderStatusCanceled) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot cancel order in %q status", order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.OrderStatusCanceled, reason); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishOrderCanceled(ctx, id, reason); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.canceled event",
				slog.String("order_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order canceled",
		slog.String("order_id", id),
		slog.String("reason", reason),
	)

	order.Status = domain.OrderStatusCanceled
	order.CanceledReason = reason

	return order, nil
}
