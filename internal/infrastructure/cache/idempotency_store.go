package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/repository"
)

const idempotencyPrefix = "idem:"

type idempotencyStore struct {
	rdb *redis.Client
}

// NewIdempotencyStore keeps idempotency records in Redis; expiry is left to key TTLs.
func NewIdempotencyStore(rdb *redis.Client) repository.IdempotencyRepository {
	return &idempotencyStore{rdb: rdb}
}

func responseKey(key string, userID uuid.UUID) string {
	return idempotencyPrefix + userID.String() + ":" + key
}

func lockKey(key string, userID uuid.UUID) string {
	return idempotencyPrefix + "lock:" + userID.String() + ":" + key
}

func (s *idempotencyStore) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	raw, err := s.rdb.Get(ctx, responseKey(key, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}

	var ikey entity.IdempotencyKey
	if err := json.Unmarshal(raw, &ikey); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}
	return &ikey, nil
}

func (s *idempotencyStore) Reserve(ctx context.Context, key string, userID uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, lockKey(key, userID), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

func (s *idempotencyStore) Release(ctx context.Context, key string, userID uuid.UUID) error {
	return s.rdb.Del(ctx, lockKey(key, userID)).Err()
}

func (s *idempotencyStore) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = time.Now()
	}
	ttl := time.Until(ikey.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(ikey)
	if err != nil {
		return fmt.Errorf("encode idempotency key: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, responseKey(ikey.Key, ikey.UserID), raw, ttl)
		pipe.Del(ctx, lockKey(ikey.Key, ikey.UserID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store idempotency key: %w", err)
	}
	return nil
}
