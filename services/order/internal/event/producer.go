package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/sakibbengal/Bengal-Boats-sub000/pkg/kafka"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/domain"
)

// Kafka topics for order domain events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
	TopicOrderCanceled      = pkgkafka.Topic("order", "canceled")
)

// Aggregate type constant.
const AggregateTypeOrder = "order"

// Source identifier for events originating from the order service.
const SourceOrderService = "order-service"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	Items          []OrderItemData `json:"items"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone"`
	City           string          `json:"city"`
	PaymentMethod  string          `json:"payment_method"`
	DeliveryOption string          `json:"delivery_option"`
	DeliveryFee    string          `json:"delivery_fee"`
	Subtotal       string          `json:"subtotal"`
	Total          string          `json:"total"`
	Notes          string          `json:"notes,omitempty"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// OrderCanceledData is the payload for an order.canceled event.
type OrderCanceledData struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes order domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the order service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
		}
	}

	return p.publish(ctx, TopicOrderCreated, order.ID, OrderCreatedData{
		ID:             order.ID,
		Status:         order.Status,
		Items:          items,
		CustomerName:   order.Customer.Name,
		CustomerPhone:  order.Customer.Phone,
		City:           order.Customer.City,
		PaymentMethod:  order.PaymentMethod,
		DeliveryOption: order.DeliveryOption,
		DeliveryFee:    order.DeliveryFee.String(),
		Subtotal:       order.Subtotal.String(),
		Total:          order.Total.String(),
		Notes:          order.Notes,
	})
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	return p.publish(ctx, TopicOrderStatusChanged, orderID, OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
}

// PublishOrderCanceled publishes an order.canceled event.
func (p *Producer) PublishOrderCanceled(ctx context.Context, orderID, reason string) error {
	return p.publish(ctx, TopicOrderCanceled, orderID, OrderCanceledData{
		OrderID: orderID,
		Reason:  reason,
	})
}

func (p *Producer) publish(ctx context.Context, topic, orderID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, orderID, AggregateTypeOrder, SourceOrderService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published order event",
		slog.String("topic", topic),
		slog.String("order_id", orderID),
	)
	return nil
}
