package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SaleStatus tracks how far a sale has been settled.
// PartiallyReturned and Returned are reserved for a returns workflow; nothing sets them yet.
type SaleStatus int

const (
	SaleStatusCompleted         SaleStatus = 0
	SaleStatusPartiallyReturned SaleStatus = 1
	SaleStatusReturned          SaleStatus = 2
	SaleStatusCredit            SaleStatus = 3
)

var saleStatusNames = [...]string{"Completed", "PartiallyReturned", "Returned", "Credit"}

func (s SaleStatus) String() string {
	if s < SaleStatusCompleted || s > SaleStatusCredit {
		return fmt.Sprintf("SaleStatus(%d)", int(s))
	}
	return saleStatusNames[s]
}

// Badge is the short label used by sale listings.
func (s SaleStatus) Badge() string {
	switch s {
	case SaleStatusCompleted:
		return "Payé"
	case SaleStatusPartiallyReturned:
		return "Retour partiel"
	case SaleStatusReturned:
		return "Retourné"
	case SaleStatusCredit:
		return "Créance"
	}
	return s.String()
}

func ParseSaleStatus(str string) (SaleStatus, error) {
	for i, name := range saleStatusNames {
		if name == str {
			return SaleStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sale status %q", str)
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SaleStatus(i)
		return nil
	}
	parsed, err := ParseSaleStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SaleStatusCompleted
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SaleStatus(v)
	case int32:
		*s = SaleStatus(v)
	case int:
		*s = SaleStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into SaleStatus", value)
	}
	return nil
}
