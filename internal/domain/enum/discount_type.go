package enum

import (
	"encoding/json"
	"fmt"
)

type DiscountType int

const (
	DiscountTypePercentage DiscountType = 0
	DiscountTypeFixed      DiscountType = 1
)

func (d DiscountType) String() string {
	switch d {
	case DiscountTypePercentage:
		return "percentage"
	case DiscountTypeFixed:
		return "fixed"
	}
	return fmt.Sprintf("DiscountType(%d)", int(d))
}

func (d DiscountType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DiscountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "percentage", "":
		*d = DiscountTypePercentage
	case "fixed":
		*d = DiscountTypeFixed
	default:
		return fmt.Errorf("unknown discount type %q", str)
	}
	return nil
}
