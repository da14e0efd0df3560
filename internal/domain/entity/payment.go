package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is one settlement applied against a sale. Payments are never edited.
type Payment struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	ReferenceNo  string           `gorm:"size:64;uniqueIndex;not null" json:"reference_no"`
	SaleID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"sale_id"`
	CustomerName string           `gorm:"size:255;not null" json:"customer_name"`
	Amount       decimal.Decimal  `gorm:"type:numeric(18,2);not null" json:"amount"`
	PaymentType  enum.PaymentType `gorm:"not null" json:"payment_type"`
	PaymentDate  time.Time        `gorm:"not null;index" json:"payment_date"`
	RecordedByID uuid.UUID        `gorm:"type:uuid" json:"recorded_by_id"`
	RecordedBy   string           `gorm:"size:255" json:"recorded_by"`
	CreatedAt    time.Time        `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
