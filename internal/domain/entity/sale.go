package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale records one product sold to one customer.
// ProductName and CustomerName are captured at sale time and never refreshed.
type Sale struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo      string            `gorm:"size:64;uniqueIndex;not null" json:"invoice_no"`
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName    string            `gorm:"size:255;not null" json:"product_name"`
	CustomerID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName   string            `gorm:"size:255;not null" json:"customer_name"`
	Quantity       int               `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	Subtotal       decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"subtotal"`
	DiscountType   enum.DiscountType `gorm:"not null;default:0" json:"discount_type"`
	DiscountValue  decimal.Decimal   `gorm:"type:numeric(18,2);not null;default:0" json:"discount_value"`
	DiscountAmount decimal.Decimal   `gorm:"type:numeric(18,2);not null;default:0" json:"discount_amount"`
	VATApplied     bool              `gorm:"not null;default:false" json:"vat_applied"`
	VATAmount      decimal.Decimal   `gorm:"type:numeric(18,2);not null;default:0" json:"vat_amount"`
	TotalPrice     decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"total_price"`
	PaidAmount     decimal.Decimal   `gorm:"type:numeric(18,2);not null;default:0" json:"paid_amount"`
	PaymentType    enum.PaymentType  `gorm:"not null" json:"payment_type"`
	Status         enum.SaleStatus   `gorm:"not null;index" json:"status"`
	SaleDate       time.Time         `gorm:"not null;index" json:"sale_date"`
	CreatedByID    uuid.UUID         `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedByName  string            `gorm:"size:255" json:"created_by_name"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// Remaining is what the customer still owes on this sale.
func (s *Sale) Remaining() decimal.Decimal {
	return s.TotalPrice.Sub(s.PaidAmount)
}

func (s *Sale) IsOutstanding() bool {
	return s.Status == enum.SaleStatusCredit
}
