package entity

import (
	"github.com/shopspring/decimal"
)

// SaleReceipt is the snapshot handed to the receipt renderer after a paid sale.
// It is composed at request time and never stored.
type SaleReceipt struct {
	Sale     Sale           `json:"sale"`
	Product  Product        `json:"product"`
	Customer Customer       `json:"customer"`
	Company  CompanyProfile `json:"company"`
}

// PaymentReceipt is the snapshot handed to the receipt renderer after a settlement.
type PaymentReceipt struct {
	Payment          Payment         `json:"payment"`
	Customer         Customer        `json:"customer"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Company          CompanyProfile  `json:"company"`
}
