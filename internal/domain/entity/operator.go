package entity

import "github.com/google/uuid"

// Operator is the authenticated cashier performing an operation.
type Operator struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
