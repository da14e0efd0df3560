package settlement

import (
	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// DeriveStatus is the single rule for a sale's settlement status.
// A sale is Completed once paid covers total. Without any payment only a zero-total
// sale counts as settled; everything else stays Credit.
func DeriveStatus(paid, total decimal.Decimal, hasAnyPayment bool) enum.SaleStatus {
	if !hasAnyPayment && total.IsPositive() {
		return enum.SaleStatusCredit
	}
	if paid.GreaterThanOrEqual(total) {
		return enum.SaleStatusCompleted
	}
	return enum.SaleStatusCredit
}

// InitialSettlement returns the paid amount and status of a freshly recorded sale.
// Deferred sales start unpaid; every other payment type settles in full at the till.
func InitialSettlement(pt enum.PaymentType, total decimal.Decimal) (decimal.Decimal, enum.SaleStatus) {
	if pt.IsDeferred() {
		return decimal.Zero, DeriveStatus(decimal.Zero, total, false)
	}
	return total, DeriveStatus(total, total, true)
}
