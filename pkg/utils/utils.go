package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartOfDay returns midnight of the day containing t, in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond (23:59:59.999) of the day containing t
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfWeek returns midnight of the most recent Sunday on or before t
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfMonth returns midnight on day 1 of t's month
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last millisecond of the last day of t's month
func EndOfMonth(t time.Time) time.Time {
	// Day 0 of next month normalizes to the last day of this month.
	y, m, _ := t.Date()
	return EndOfDay(time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()))
}

// StartOfYear returns midnight on January 1st of t's year
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// EndOfYear returns the last millisecond of December 31st of t's year
func EndOfYear(t time.Time) time.Time {
	return EndOfDay(time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location()))
}

// DecimalOrDefault returns *d, or fallback when d is nil
func DecimalOrDefault(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}
