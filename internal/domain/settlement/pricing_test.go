package settlement

import (
	"testing"

	"github.com/sangkips/creance-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestQuote_DiscountAndVAT(t *testing.T) {
	q, err := DefaultPricing().Quote(dec("1000"), 2, Discount{Type: enum.DiscountTypePercentage, Value: dec("10")}, true)
	require.NoError(t, err)

	assertDecimal(t, "2000", q.Subtotal)
	assertDecimal(t, "200", q.DiscountAmount)
	assertDecimal(t, "1800", q.SubtotalAfterDiscount)
	assertDecimal(t, "324", q.VATAmount)
	assertDecimal(t, "2124", q.Total)
}

func TestQuote_NoDiscountNoVAT(t *testing.T) {
	q, err := DefaultPricing().Quote(dec("1000"), 3, Discount{}, false)
	require.NoError(t, err)

	assertDecimal(t, "3000", q.Subtotal)
	assertDecimal(t, "0", q.DiscountAmount)
	assertDecimal(t, "0", q.VATAmount)
	assertDecimal(t, "3000", q.Total)
}

func TestQuote_FixedDiscount(t *testing.T) {
	q, err := DefaultPricing().Quote(dec("250"), 4, Discount{Type: enum.DiscountTypeFixed, Value: dec("150")}, false)
	require.NoError(t, err)

	assertDecimal(t, "850", q.Total)
}

func TestQuote_RoundsHalfUpToTwoPlaces(t *testing.T) {
	// 33.33 * 0.18 = 5.9994
	q, err := DefaultPricing().Quote(dec("33.33"), 1, Discount{}, true)
	require.NoError(t, err)
	assertDecimal(t, "6.00", q.VATAmount)
	assertDecimal(t, "39.33", q.Total)

	// 12.5% of 0.20 = 0.025
	q, err = DefaultPricing().Quote(dec("0.20"), 1, Discount{Type: enum.DiscountTypePercentage, Value: dec("12.5")}, false)
	require.NoError(t, err)
	assertDecimal(t, "0.03", q.DiscountAmount)
}

func TestQuote_DiscountExceedingSubtotal(t *testing.T) {
	d := Discount{Type: enum.DiscountTypeFixed, Value: dec("5000")}

	_, err := DefaultPricing().Quote(dec("1000"), 1, d, true)
	assert.ErrorIs(t, err, ErrDiscountExceedsSubtotal)

	clamp := NewPricing(DefaultVATRate, 2, DiscountClamp)
	q, err := clamp.Quote(dec("1000"), 1, d, true)
	require.NoError(t, err)
	assertDecimal(t, "1000", q.DiscountAmount)
	assertDecimal(t, "0", q.Total)
}

func TestQuote_RejectsBadInput(t *testing.T) {
	p := DefaultPricing()

	_, err := p.Quote(dec("10"), 0, Discount{}, false)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = p.Quote(dec("10"), 1, Discount{Value: dec("-1")}, false)
	assert.ErrorIs(t, err, ErrNegativeDiscount)

	_, err = p.Quote(dec("-10"), 1, Discount{}, false)
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = p.Quote(dec("10"), 1, Discount{Type: enum.DiscountType(7)}, false)
	assert.ErrorIs(t, err, ErrUnknownDiscountType)
}

func TestQuote_HundredPercentDiscountIsAllowed(t *testing.T) {
	q, err := DefaultPricing().Quote(dec("1000"), 1, Discount{Type: enum.DiscountTypePercentage, Value: dec("100")}, true)
	require.NoError(t, err)
	assertDecimal(t, "0", q.Total)
}

func TestParseDiscountPolicy(t *testing.T) {
	p, err := ParseDiscountPolicy("clamp")
	require.NoError(t, err)
	assert.Equal(t, DiscountClamp, p)

	p, err = ParseDiscountPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DiscountReject, p)

	_, err = ParseDiscountPolicy("ignore")
	assert.Error(t, err)
}

func TestPricing_InScale(t *testing.T) {
	p := DefaultPricing()
	tests := []struct {
		amount string
		want   bool
	}{
		{"100", true},
		{"99.99", true},
		{"1.500", true},
		{"0.005", false},
		{"99.995", false},
		{"-0.001", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, p.InScale(dec(tt.amount)))
		})
	}

	assert.False(t, NewPricing(DefaultVATRate, 0, DiscountReject).InScale(dec("0.5")))
}
