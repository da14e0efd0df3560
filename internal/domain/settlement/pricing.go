// Package settlement holds the pure arithmetic shared by the sale and payment workflows.
package settlement

import (
	"errors"
	"fmt"

	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
	ErrNegativePrice           = errors.New("unit price cannot be negative")
	ErrNegativeDiscount        = errors.New("discount cannot be negative")
	ErrDiscountExceedsSubtotal = errors.New("discount exceeds subtotal")
	ErrUnknownDiscountType     = errors.New("unknown discount type")
)

var (
	DefaultVATRate              = decimal.RequireFromString("0.18")
	DefaultRoundingPlaces int32 = 2
	hundred                     = decimal.NewFromInt(100)
)

// DiscountPolicy decides what happens when a discount is larger than the subtotal.
type DiscountPolicy int

const (
	DiscountReject DiscountPolicy = iota
	DiscountClamp
)

func ParseDiscountPolicy(s string) (DiscountPolicy, error) {
	switch s {
	case "", "reject":
		return DiscountReject, nil
	case "clamp":
		return DiscountClamp, nil
	}
	return DiscountReject, fmt.Errorf("unknown discount policy %q", s)
}

// Discount is what the cashier entered: a percentage of the subtotal or a fixed amount.
type Discount struct {
	Type  enum.DiscountType
	Value decimal.Decimal
}

// Quote is the full price breakdown of a sale line.
type Quote struct {
	Subtotal              decimal.Decimal
	DiscountAmount        decimal.Decimal
	SubtotalAfterDiscount decimal.Decimal
	VATAmount             decimal.Decimal
	Total                 decimal.Decimal
}

// Pricing computes quotes. The zero value is not usable; see NewPricing.
type Pricing struct {
	VATRate        decimal.Decimal
	Places         int32
	DiscountPolicy DiscountPolicy
}

func NewPricing(vatRate decimal.Decimal, places int32, policy DiscountPolicy) Pricing {
	if places < 0 {
		places = DefaultRoundingPlaces
	}
	return Pricing{VATRate: vatRate, Places: places, DiscountPolicy: policy}
}

// InScale reports whether amount needs no rounding at p.Places, i.e. whether it can be
// stored without changing its value.
func (p Pricing) InScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(p.Places))
}

// DefaultPricing uses an 18% VAT rate, 2 decimal places and rejects oversized discounts.
func DefaultPricing() Pricing {
	return NewPricing(DefaultVATRate, DefaultRoundingPlaces, DiscountReject)
}

// Quote prices qty units at unitPrice. Discount and VAT amounts are rounded half away
// from zero to p.Places; subtotal and total are exact sums of their parts.
func (p Pricing) Quote(unitPrice decimal.Decimal, qty int, d Discount, applyVAT bool) (Quote, error) {
	if qty < 1 {
		return Quote{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Quote{}, ErrNegativePrice
	}
	if d.Value.IsNegative() {
		return Quote{}, ErrNegativeDiscount
	}

	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(qty)))

	var discount decimal.Decimal
	switch d.Type {
	case enum.DiscountTypePercentage:
		discount = subtotal.Mul(d.Value).Div(hundred)
	case enum.DiscountTypeFixed:
		discount = d.Value
	default:
		return Quote{}, ErrUnknownDiscountType
	}
	discount = discount.Round(p.Places)

	if discount.GreaterThan(subtotal) {
		if p.DiscountPolicy != DiscountClamp {
			return Quote{}, ErrDiscountExceedsSubtotal
		}
		discount = subtotal
	}

	after := subtotal.Sub(discount)
	vat := decimal.Zero
	if applyVAT {
		vat = after.Mul(p.VATRate).Round(p.Places)
	}

	return Quote{
		Subtotal:              subtotal,
		DiscountAmount:        discount,
		SubtotalAfterDiscount: after,
		VATAmount:             vat,
		Total:                 after.Add(vat),
	}, nil
}
