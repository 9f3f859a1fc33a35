package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
)

// --- Mock cache ---

type mockCartCache struct {
	mock.Mock
}

func (m *mockCartCache) Get(ctx context.Context, sessionID string) ([]byte, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockCartCache) Set(ctx context.Context, sessionID string, data []byte) error {
	args := m.Called(ctx, sessionID, data)
	return args.Error(0)
}

// memoryCache is a working cache for multi-step tests.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, sessionID string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	return d, nil
}

func (c *memoryCache) Set(_ context.Context, sessionID string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[sessionID] = append([]byte(nil), data...)
	c.sets++
	return nil
}

func (c *memoryCache) raw(sessionID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.data[sessionID])
}

// --- Mock intake ---

type mockIntake struct {
	mock.Mock
}

func (m *mockIntake) SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderConfirmation, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderConfirmation), args.Error(1)
}

// --- Mock publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, sessionID string, snap domain.CartSnapshot) error {
	return m.Called(ctx, sessionID, snap).Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, sessionID string, conf *domain.OrderConfirmation) error {
	return m.Called(ctx, sessionID, conf).Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
