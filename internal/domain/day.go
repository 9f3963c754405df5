package domain

import (
	"math"
	"time"
)

// DayLayout is the wire and storage format for calendar days.
const DayLayout = time.DateOnly

// LegacyUnsetFinishDate is the sentinel older data used for "not finished".
var LegacyUnsetFinishDate = time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

// Day truncates t to midnight UTC of its calendar date in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a Day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// MustParseDay is ParseDay for literals. It panics on malformed input.
func MustParseDay(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DayKey formats a day as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// DayPtr returns a pointer to the Day of t.
func DayPtr(t time.Time) *time.Time {
	d := Day(t)
	return &d
}

// NormalizeFinishDate maps the legacy sentinel to nil and truncates
// everything else to a Day.
func NormalizeFinishDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := Day(*t)
	if d.Equal(LegacyUnsetFinishDate) {
		return nil
	}
	return &d
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
