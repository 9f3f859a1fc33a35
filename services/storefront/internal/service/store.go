package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/repository"
)

// persistTimeout bounds each cache write. Writes are detached from the
// request context so a client hanging up does not lose a mutation.
const persistTimeout = 2 * time.Second

// CartStore binds a domain.Cart to one session's cache entry. Mutations apply
// in memory first and are then written through; a failed write is logged and
// the in-memory state stands.
type CartStore struct {
	mu        sync.Mutex
	cart      *domain.Cart
	cache     repository.CartCache
	sessionID string
	logger    *slog.Logger
}

// OpenCartStore rehydrates the session's cart from cache. A missing,
// unreadable or corrupt entry yields an empty cart.
func OpenCartStore(ctx context.Context, cache repository.CartCache, sessionID string, logger *slog.Logger) *CartStore {
	s := &CartStore{
		cart:      domain.NewCart(),
		cache:     cache,
		sessionID: sessionID,
		logger:    logger.With(slog.String("session_id", sessionID)),
	}

	data, err := cache.Get(ctx, sessionID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return s
	case err != nil:
		s.logger.WarnContext(ctx, "cart cache unavailable, starting with empty cart", slog.String("error", err.Error()))
		return s
	}

	inputs, dropped, err := domain.DecodeLines(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable cart", slog.String("error", err.Error()))
		return s
	}
	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped malformed cart lines", slog.Int("dropped", dropped))
	}
	s.cart = domain.NewCart(inputs...)
	return s
}

// SessionID returns the session the store is bound to.
func (s *CartStore) SessionID() string { return s.sessionID }

// AddItem adds or merges a line and persists the cart.
func (s *CartStore) AddItem(ctx context.Context, in domain.AddItemInput) domain.CartSnapshot {
	return s.mutate(ctx, func(c *domain.Cart) { c.AddItem(in) })
}

// RemoveItem removes a line and persists the cart.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) domain.CartSnapshot {
	return s.mutate(ctx, func(c *domain.Cart) { c.RemoveItem(productID) })
}

// UpdateQuantity sets a line's quantity and persists the cart.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) domain.CartSnapshot {
	return s.mutate(ctx, func(c *domain.Cart) { c.UpdateQuantity(productID, quantity) })
}

// Clear empties the cart and persists [].
func (s *CartStore) Clear(ctx context.Context) domain.CartSnapshot {
	return s.mutate(ctx, func(c *domain.Cart) { c.Clear() })
}

// IsInCart reports whether productID has a line.
func (s *CartStore) IsInCart(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.IsInCart(productID)
}

// QuantityOf returns the quantity for productID, or 0.
func (s *CartStore) QuantityOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.QuantityOf(productID)
}

// Line returns the line for productID.
func (s *CartStore) Line(productID string) (domain.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Line(productID)
}

// Totals returns the derived totals.
func (s *CartStore) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals()
}

// Lines returns a copy of the lines.
func (s *CartStore) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Snapshot returns an immutable copy of the cart.
func (s *CartStore) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

func (s *CartStore) mutate(ctx context.Context, fn func(*domain.Cart)) domain.CartSnapshot {
	s.mu.Lock()
	fn(s.cart)
	snap := s.cart.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, snap.Lines)
	return snap
}

func (s *CartStore) persist(ctx context.Context, lines []domain.CartLine) {
	data, err := domain.EncodeLines(lines)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode cart", slog.String("error", err.Error()))
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.cache.Set(wctx, s.sessionID, data); err != nil {
		s.logger.WarnContext(ctx, "failed to persist cart", slog.String("error", err.Error()))
	}
}
