package service

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/repository"
)

// CartService runs cart operations for a session. Each call opens its own
// CartStore, so concurrent requests for one session are last-write-wins.
type CartService struct {
	cache  repository.CartCache
	events EventPublisher
	logger *slog.Logger
}

// NewCartService creates a cart service. events may be nil.
func NewCartService(cache repository.CartCache, events EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{cache: cache, events: events, logger: logger}
}

// Open rehydrates the cart store for sessionID.
func (s *CartService) Open(ctx context.Context, sessionID string) (*CartStore, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	return OpenCartStore(ctx, s.cache, sessionID, s.logger), nil
}

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return store.Snapshot(), nil
}

// GetItem returns one line of the session's cart.
func (s *CartService) GetItem(ctx context.Context, sessionID, productID string) (domain.CartLine, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.CartLine{}, err
	}
	line, ok := store.Line(productID)
	if !ok {
		return domain.CartLine{}, apperrors.NotFound("cart item", productID)
	}
	return line, nil
}

// AddItem adds a product to the session's cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, in domain.AddItemInput) (domain.CartSnapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	snap := store.AddItem(ctx, in)
	s.publishUpdated(ctx, sessionID, snap)
	return snap, nil
}

// UpdateQuantity sets a line's quantity; below 1 removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (domain.CartSnapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	snap := store.UpdateQuantity(ctx, productID, quantity)
	s.publishUpdated(ctx, sessionID, snap)
	return snap, nil
}

// RemoveItem drops a line. Removing an absent product succeeds.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (domain.CartSnapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	snap := store.RemoveItem(ctx, productID)
	s.publishUpdated(ctx, sessionID, snap)
	return snap, nil
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	snap := store.Clear(ctx)
	s.publishCleared(ctx, sessionID)
	return snap, nil
}

func (s *CartService) publishUpdated(ctx context.Context, sessionID string, snap domain.CartSnapshot) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCartUpdated(ctx, sessionID, snap); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart.updated", slog.String("error", err.Error()))
	}
}

func (s *CartService) publishCleared(ctx context.Context, sessionID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart.cleared", slog.String("error", err.Error()))
	}
}
