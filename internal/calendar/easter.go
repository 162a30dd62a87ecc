// Package calendar computes the concrete dates of fixed and movable
// observances for a Gregorian calendar year.
package calendar

import (
	"time"
)

// Years outside this window are rejected by BuildAnchorTable. The Gregorian
// computus is undefined before the 1582 reform, and we cap the far end
// rather than produce in-range-looking dates for absurd years.
const (
	MinYear = 1583
	MaxYear = 4099
)

// CalculateEaster calculates the date of Easter Sunday for a given year
// using the computus algorithm for the Gregorian calendar.
//
// The algorithm is the Meeus/Jones/Butcher method, integer arithmetic only.
func CalculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return Date(year, time.Month(month), day)
}

// Date constructs a civil date normalized to midnight UTC.
// All date arithmetic in this package happens on these normalized values.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize strips any time-of-day and timezone from t, returning the
// civil date at midnight UTC.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysBetween returns the signed number of whole days from a to b.
// Both values must be normalized dates.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// SameDate reports whether two values fall on the same civil date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ParseDateString parses a date string in YYYY-MM-DD format.
func ParseDateString(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}
