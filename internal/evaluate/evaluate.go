// Package evaluate turns a parsed time spec into a concrete instant in an
// anchor zone.
package evaluate

import (
	"fmt"
	"time"

	"github.com/papapumpkin/when/internal/expr"
)

// InvalidDateError reports a date that parses but does not exist on the
// calendar, such as 30 February.
type InvalidDateError struct {
	Day   int
	Month int
	Year  int
}

// Error implements the error interface.
func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("evaluate: invalid date %02d.%02d.%04d", e.Day, e.Month, e.Year)
}

// Evaluate resolves spec against ref in the anchor zone. Absolute specs start
// from ref's calendar date in anchor; without a time of day the reference
// wall clock is kept.
func Evaluate(spec expr.TimeSpec, anchor *time.Location, ref time.Time) (time.Time, error) {
	if anchor == nil {
		anchor = time.UTC
	}
	switch s := spec.(type) {
	case expr.Now:
		return ref.In(anchor), nil
	case expr.RelativeOffset:
		return ref.Add(time.Duration(s.Seconds) * time.Second).In(anchor), nil
	case expr.UnixEpoch:
		return time.Unix(s.Seconds, 0).In(anchor), nil
	case expr.Absolute:
		return absolute(s, ref.In(anchor))
	default:
		return time.Time{}, fmt.Errorf("evaluate: unsupported time spec %T", spec)
	}
}

func absolute(s expr.Absolute, base time.Time) (time.Time, error) {
	year, month, day := base.Date()
	hour, minute, sec := base.Clock()
	nsec := base.Nanosecond()

	switch d := s.Date.(type) {
	case nil, expr.Today:
	case expr.Tomorrow:
		day++
	case expr.Yesterday:
		day--
	case expr.InDays:
		day += d.N
	case expr.Explicit:
		if d.Year != 0 {
			year = d.Year
		}
		if !validDate(year, d.Month, d.Day) {
			return time.Time{}, &InvalidDateError{Day: d.Day, Month: d.Month, Year: year}
		}
		month, day = time.Month(d.Month), d.Day
	default:
		return time.Time{}, fmt.Errorf("evaluate: unsupported date spec %T", s.Date)
	}

	if s.Time != nil {
		hour, minute, sec, nsec = s.Time.Hour24(), s.Time.Minute, s.Time.Second, 0
	}
	return time.Date(year, month, day, hour, minute, sec, nsec, base.Location()), nil
}

// validDate reports whether day exists in month of year. time.Date
// normalizes overflow, so a round trip that changes the fields means the
// date does not exist.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}
