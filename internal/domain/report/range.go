package report

import (
	"time"

	"github.com/sangkips/creance-pos/internal/domain/enum"
)

// ResolveRange turns a named range into a window, evaluated in now's location.
// Weeks start on Monday and run to the end of today. Month and year windows cover the
// whole calendar period. Custom windows span start 00:00 through end 23:59:59.999.
func ResolveRange(r enum.DateRange, now time.Time, start, end *time.Time) (Window, error) {
	loc := now.Location()
	today := startOfDay(now)

	switch r {
	case enum.DateRangeToday:
		return window(today, endOfDay(now)), nil
	case enum.DateRangeWeek:
		offset := (int(now.Weekday()) + 6) % 7
		return window(today.AddDate(0, 0, -offset), endOfDay(now)), nil
	case enum.DateRangeMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return window(first, first.AddDate(0, 1, 0).Add(-time.Millisecond)), nil
	case enum.DateRangeYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return window(first, first.AddDate(1, 0, 0).Add(-time.Millisecond)), nil
	case enum.DateRangeCustom:
		if start == nil || end == nil {
			return Window{}, ErrCustomRangeIncomplete
		}
		return window(startOfDay(start.In(loc)), endOfDay(end.In(loc))), nil
	default:
		return Window{}, nil
	}
}

func window(from, to time.Time) Window {
	return Window{From: &from, To: &to}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}
