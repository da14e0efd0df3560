package enum

import "fmt"

// DateRange selects the window used by sale listings.
type DateRange string

const (
	DateRangeToday  DateRange = "today"
	DateRangeWeek   DateRange = "week"
	DateRangeMonth  DateRange = "month"
	DateRangeYear   DateRange = "year"
	DateRangeAll    DateRange = "all"
	DateRangeCustom DateRange = "custom"
)

func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(s); r {
	case DateRangeToday, DateRangeWeek, DateRangeMonth, DateRangeYear, DateRangeAll, DateRangeCustom:
		return r, nil
	case "":
		return DateRangeAll, nil
	}
	return "", fmt.Errorf("unknown date range %q", s)
}
