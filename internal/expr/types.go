// Package expr parses free-form time and location expressions such as
// "5pm in vienna -> tokyo" into a structured Expression. The grammar is a
// fixed, case-insensitive ordered-choice grammar; the first alternative that
// matches wins and the whole input must be consumed.
package expr

// TimeSpec is the parsed time part of an expression. It is a closed set:
// Now, Absolute, RelativeOffset and UnixEpoch are the only implementations.
type TimeSpec interface {
	timeSpec()
}

// Now is the current instant in the anchor zone.
type Now struct{}

// Absolute is a wall-clock time and/or a calendar date. At least one of
// Time and Date is set.
type Absolute struct {
	Time *Clock
	Date DateSpec
}

// RelativeOffset is an offset from the reference instant. Negative values
// come from "... ago".
type RelativeOffset struct {
	Seconds int64
}

// UnixEpoch is a number of seconds since 1970-01-01T00:00:00Z.
type UnixEpoch struct {
	Seconds int64
}

func (Now) timeSpec()            {}
func (Absolute) timeSpec()       {}
func (RelativeOffset) timeSpec() {}
func (UnixEpoch) timeSpec()      {}

// DateSpec is the date part of an Absolute time. Today, Tomorrow, Yesterday,
// InDays and Explicit are the only implementations.
type DateSpec interface {
	dateSpec()
}

// Today keeps the reference date.
type Today struct{}

// Tomorrow is the reference date plus one day.
type Tomorrow struct{}

// Yesterday is the reference date minus one day.
type Yesterday struct{}

// InDays is the reference date plus N days.
type InDays struct {
	N int
}

// Explicit replaces the day and month. Year is zero when the input named no
// year, in which case the reference year is kept.
type Explicit struct {
	Day   int
	Month int
	Year  int
}

func (Today) dateSpec()     {}
func (Tomorrow) dateSpec()  {}
func (Yesterday) dateSpec() {}
func (InDays) dateSpec()    {}
func (Explicit) dateSpec()  {}

// Meridiem marks a 12-hour clock reading.
type Meridiem int

const (
	// NoMeridiem marks a 24-hour reading.
	NoMeridiem Meridiem = iota
	// AM marks a 12-hour reading before noon.
	AM
	// PM marks a 12-hour reading after noon.
	PM
)

// Clock is a time of day as written. Hour is 1-12 when Meridiem is set and
// 0-23 otherwise.
type Clock struct {
	Hour     int
	Minute   int
	Second   int
	Meridiem Meridiem
}

// Hour24 returns the hour on a 24-hour clock.
func (c Clock) Hour24() int {
	switch c.Meridiem {
	case AM:
		return c.Hour % 12
	case PM:
		return c.Hour%12 + 12
	default:
		return c.Hour
	}
}

// TokenKind classifies a location token before resolution.
type TokenKind int

const (
	// KindPlace is free text naming a city, airport or zone.
	KindPlace TokenKind = iota
	// KindLocal refers to the machine's local zone, either written as
	// "local" or implied by an arrow chain with no "in" source.
	KindLocal
	// KindUTC is the implicit UTC source of "unix:N -> place".
	KindUTC
)

// LocationToken is a raw location substring with its byte offset in the
// input. Implicit tokens carry the offset of the arrow that introduced them.
type LocationToken struct {
	Text   string
	Offset int
	Kind   TokenKind
}

// Expression is the result of parsing one input string. Locations are in
// input order: the first is the anchor, the rest are targets.
type Expression struct {
	Time      TimeSpec
	Locations []LocationToken
}

// IsRelative reports whether the spec depends on the current wall clock.
func IsRelative(spec TimeSpec) bool {
	switch spec.(type) {
	case Now, RelativeOffset:
		return true
	default:
		return false
	}
}
