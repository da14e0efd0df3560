package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentType_AcceptsNamesAndLabels(t *testing.T) {
	cases := map[string]PaymentType{
		"Cash":            PaymentTypeCash,
		"espèce":          PaymentTypeCash,
		"Wave":            PaymentTypeMobileMoneyA,
		"Orange Money":    PaymentTypeMobileMoneyB,
		"Créance":         PaymentTypeCreditNote,
		"Customer-Credit": PaymentTypeCustomerCredit,
		"Crédit Client":   PaymentTypeCustomerCredit,
	}
	for in, want := range cases {
		got, err := ParsePaymentType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePaymentType("Cheque")
	assert.Error(t, err)
}

func TestPaymentType_JSON(t *testing.T) {
	data, err := json.Marshal(PaymentTypeCreditNote)
	require.NoError(t, err)
	assert.JSONEq(t, `"Credit-Note"`, string(data))

	var p PaymentType
	require.NoError(t, json.Unmarshal([]byte(`"Wave"`), &p))
	assert.Equal(t, PaymentTypeMobileMoneyA, p)
	assert.Error(t, json.Unmarshal([]byte(`9`), &p))
}

func TestPaymentType_Predicates(t *testing.T) {
	assert.True(t, PaymentTypeCreditNote.IsDeferred())
	assert.False(t, PaymentTypeCustomerCredit.IsDeferred())
	assert.True(t, PaymentTypeCustomerCredit.ConsumesCredit())
	assert.False(t, PaymentTypeCash.ConsumesCredit())
}

func TestSaleStatus_ScanAndJSON(t *testing.T) {
	var s SaleStatus
	require.NoError(t, s.Scan(int64(3)))
	assert.Equal(t, SaleStatusCredit, s)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"Credit"`, string(data))
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("")
	require.NoError(t, err)
	assert.Equal(t, DateRangeAll, r)

	_, err = ParseDateRange("decade")
	assert.Error(t, err)
}
