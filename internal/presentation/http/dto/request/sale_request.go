package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// DiscountRequest is an optional discount on a sale
type DiscountRequest struct {
	Type  enum.DiscountType `json:"type"`
	Value decimal.Decimal   `json:"value"`
}

// RecordSaleRequest records a single-product sale
type RecordSaleRequest struct {
	ProductID   uuid.UUID         `json:"product_id" binding:"required"`
	CustomerID  uuid.UUID         `json:"customer_id" binding:"required"`
	Quantity    int               `json:"quantity" binding:"required,min=1"`
	PaymentType *enum.PaymentType `json:"payment_type" binding:"required"`
	Discount    *DiscountRequest  `json:"discount"`
	ApplyVAT    bool              `json:"apply_vat"`
}

// ApplyPaymentRequest settles part or all of an outstanding sale
type ApplyPaymentRequest struct {
	Amount      decimal.Decimal   `json:"amount"`
	PaymentType *enum.PaymentType `json:"payment_type" binding:"required"`
}

// SaleFilterRequest selects sales by named date range
type SaleFilterRequest struct {
	Range      string `form:"range"`
	Start      string `form:"start"`
	End        string `form:"end"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// PaymentFilterRequest lists payments, optionally for one sale
type PaymentFilterRequest struct {
	SaleID  string `form:"sale_id" binding:"omitempty,uuid"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
