package repository

import "context"

// CartCache is the durable key-value mirror of session carts. Values are the
// encoded line array; the cache does not interpret them.
type CartCache interface {
	// Get returns the stored blob, or an error wrapping apperrors.ErrNotFound
	// when the session has none.
	Get(ctx context.Context, sessionID string) ([]byte, error)

	// Set overwrites the blob for the session.
	Set(ctx context.Context, sessionID string, data []byte) error
}
