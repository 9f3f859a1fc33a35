package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/sakibbengal/Bengal-Boats-sub000/pkg/kafka"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
)

// Topics published by the storefront.
var (
	TopicCartUpdated = pkgkafka.Topic("cart", "updated")
	TopicCartCleared = pkgkafka.Topic("cart", "cleared")
	TopicOrderPlaced = pkgkafka.Topic("order", "placed")
)

const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
	SourceStorefront   = "storefront-service"
)

// CartUpdatedData is the payload of cart.updated.
type CartUpdatedData struct {
	SessionID  string         `json:"session_id"`
	Items      []CartLineData `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice string         `json:"total_price"`
}

// CartLineData is one line inside cart events.
type CartLineData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartClearedData is the payload of cart.cleared.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// OrderPlacedData is the payload of order.placed.
type OrderPlacedData struct {
	OrderID        string `json:"order_id"`
	SessionID      string `json:"session_id"`
	ItemCount      int    `json:"item_count"`
	Subtotal       string `json:"subtotal"`
	DeliveryFee    string `json:"delivery_fee"`
	Total          string `json:"total"`
	DeliveryOption string `json:"delivery_option"`
	PaymentMethod  string `json:"payment_method"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a storefront event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishCartUpdated publishes the cart state after a mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, snap domain.CartSnapshot) error {
	items := make([]CartLineData, len(snap.Lines))
	for i, l := range snap.Lines {
		items[i] = CartLineData{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
		}
	}
	return p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, CartUpdatedData{
		SessionID:  sessionID,
		Items:      items,
		TotalItems: snap.Totals.TotalItems,
		TotalPrice: snap.Totals.TotalPrice.String(),
	})
}

// PublishCartCleared publishes that a session's cart was emptied.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, CartClearedData{SessionID: sessionID})
}

// PublishOrderPlaced publishes a successfully submitted order.
func (p *Producer) PublishOrderPlaced(ctx context.Context, sessionID string, conf *domain.OrderConfirmation) error {
	d := conf.Draft
	itemCount := 0
	for _, it := range d.Items {
		itemCount += it.Quantity
	}
	return p.publish(ctx, TopicOrderPlaced, conf.OrderID, AggregateTypeOrder, OrderPlacedData{
		OrderID:        conf.OrderID,
		SessionID:      sessionID,
		ItemCount:      itemCount,
		Subtotal:       d.Subtotal.String(),
		DeliveryFee:    d.DeliveryFee.String(),
		Total:          d.Total.String(),
		DeliveryOption: string(d.DeliveryZone),
		PaymentMethod:  string(d.PaymentMethod),
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
