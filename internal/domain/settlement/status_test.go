package settlement

import (
	"testing"

	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		paid    string
		total   string
		anyPaid bool
		want    enum.SaleStatus
	}{
		{"unpaid deferred sale", "0", "3000", false, enum.SaleStatusCredit},
		{"partially paid", "1000", "3000", true, enum.SaleStatusCredit},
		{"fully paid", "3000", "3000", true, enum.SaleStatusCompleted},
		{"zero total without payment", "0", "0", false, enum.SaleStatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(dec(tt.paid), dec(tt.total), tt.anyPaid))
		})
	}
}

func TestInitialSettlement(t *testing.T) {
	paid, status := InitialSettlement(enum.PaymentTypeCreditNote, dec("3000"))
	assertDecimal(t, "0", paid)
	assert.Equal(t, enum.SaleStatusCredit, status)

	paid, status = InitialSettlement(enum.PaymentTypeMobileMoneyA, dec("3000"))
	assertDecimal(t, "3000", paid)
	assert.Equal(t, enum.SaleStatusCompleted, status)

	paid, status = InitialSettlement(enum.PaymentTypeCustomerCredit, dec("3000"))
	assertDecimal(t, "3000", paid)
	assert.Equal(t, enum.SaleStatusCompleted, status)
}
