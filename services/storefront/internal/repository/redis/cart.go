package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
)

const keyPrefix = "cart:"

// CartCache implements repository.CartCache on Redis string keys.
type CartCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartCache creates a cache whose entries expire after ttl of inactivity.
// A zero ttl keeps entries forever.
func NewCartCache(client *redis.Client, ttl time.Duration) *CartCache {
	return &CartCache{client: client, ttl: ttl}
}

// Key returns the Redis key for a session.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Get reads the cart blob for sessionID.
func (c *CartCache) Get(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := c.client.Get(ctx, Key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", sessionID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return data, nil
}

// Set writes the cart blob for sessionID, refreshing its TTL.
func (c *CartCache) Set(ctx context.Context, sessionID string, data []byte) error {
	if err := c.client.Set(ctx, Key(sessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}
