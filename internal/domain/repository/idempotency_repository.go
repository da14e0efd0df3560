package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses for retried writes
type IdempotencyRepository interface {
	// GetByKey returns the stored response, or nil when the key was never completed
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve claims the key for an in-flight request. It returns false if another
	// request already holds it.
	Reserve(ctx context.Context, key string, userID uuid.UUID, ttl time.Duration) (bool, error)
	// Release drops a reservation without storing a response
	Release(ctx context.Context, key string, userID uuid.UUID) error
	// Create stores the response; it expires at ikey.ExpiresAt
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
}
