package convert

import "time"

// Period is a coarse time-of-day bucket.
type Period string

// Periods of the day, by local hour.
const (
	EarlyMorning Period = "early_morning" // 05
	Morning      Period = "morning"       // 06-08
	LateMorning  Period = "late_morning"  // 09-11
	Noon         Period = "noon"          // 12
	Afternoon    Period = "afternoon"     // 13-16
	EarlyEvening Period = "early_evening" // 17-18
	Evening      Period = "evening"       // 19-20
	LateEvening  Period = "late_evening"  // 21-22
	Night        Period = "night"         // 23-04
)

// PeriodOf returns the bucket for t's wall-clock hour.
func PeriodOf(t time.Time) Period {
	switch h := t.Hour(); {
	case h == 5:
		return EarlyMorning
	case h >= 6 && h <= 8:
		return Morning
	case h >= 9 && h <= 11:
		return LateMorning
	case h == 12:
		return Noon
	case h >= 13 && h <= 16:
		return Afternoon
	case h >= 17 && h <= 18:
		return EarlyEvening
	case h >= 19 && h <= 20:
		return Evening
	case h >= 21 && h <= 22:
		return LateEvening
	default:
		return Night
	}
}
