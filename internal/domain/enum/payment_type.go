package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentType is how a sale or payment was tendered
type PaymentType int

const (
	PaymentTypeCash           PaymentType = 0
	PaymentTypeMobileMoneyA   PaymentType = 1
	PaymentTypeMobileMoneyB   PaymentType = 2
	PaymentTypeCreditNote     PaymentType = 3
	PaymentTypeCustomerCredit PaymentType = 4
)

var paymentTypeNames = [...]string{"Cash", "Mobile-Money-A", "Mobile-Money-B", "Credit-Note", "Customer-Credit"}

// Labels shown on receipts and accepted from the cashier UI
var paymentTypeLabels = [...]string{"Espèce", "Wave", "Orange Money", "Créance", "Crédit Client"}

func (p PaymentType) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("PaymentType(%d)", int(p))
	}
	return paymentTypeNames[p]
}

// Label is the display text printed on receipts.
func (p PaymentType) Label() string {
	if !p.IsValid() {
		return p.String()
	}
	return paymentTypeLabels[p]
}

func (p PaymentType) IsValid() bool {
	return p >= PaymentTypeCash && p <= PaymentTypeCustomerCredit
}

// IsDeferred reports whether the sale is recorded now and paid later.
func (p PaymentType) IsDeferred() bool {
	return p == PaymentTypeCreditNote
}

// ConsumesCredit reports whether the amount is drawn from the customer's balance.
func (p PaymentType) ConsumesCredit() bool {
	return p == PaymentTypeCustomerCredit
}

// ParsePaymentType accepts the canonical name or the display label, case-insensitively.
func ParsePaymentType(s string) (PaymentType, error) {
	s = strings.TrimSpace(s)
	for i := range paymentTypeNames {
		if strings.EqualFold(s, paymentTypeNames[i]) || strings.EqualFold(s, paymentTypeLabels[i]) {
			return PaymentType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment type %q", s)
}

func (p PaymentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PaymentType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !PaymentType(i).IsValid() {
			return fmt.Errorf("unknown payment type %d", i)
		}
		*p = PaymentType(i)
		return nil
	}
	parsed, err := ParsePaymentType(str)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p PaymentType) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *PaymentType) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentTypeCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*p = PaymentType(v)
	case int32:
		*p = PaymentType(v)
	case int:
		*p = PaymentType(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentType", value)
	}
	return nil
}
