package service

import (
	"context"

	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
)

// EventPublisher publishes storefront events. Implementations may fail;
// callers only log the error.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, snap domain.CartSnapshot) error
	PublishCartCleared(ctx context.Context, sessionID string) error
	PublishOrderPlaced(ctx context.Context, sessionID string, conf *domain.OrderConfirmation) error
}

// OrderIntake accepts finished drafts and creates orders.
type OrderIntake interface {
	SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderConfirmation, error)
}
