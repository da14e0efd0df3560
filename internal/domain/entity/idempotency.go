package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores the response of a processed write so a retried request can be replayed
type IdempotencyKey struct {
	Key          string    `json:"key"`
	UserID       uuid.UUID `json:"user_id"`
	Endpoint     string    `json:"endpoint"`
	RequestHash  string    `json:"request_hash"`
	ResponseCode int       `json:"response_code"`
	ResponseBody string    `json:"response_body"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (k *IdempotencyKey) IsExpired() bool {
	return time.Now().After(k.ExpiresAt)
}
