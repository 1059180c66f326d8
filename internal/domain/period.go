package domain

import "time"

// ClinicZone is the fixed reference offset of the clinic (UTC+7).
// A fixed zone is used instead of a tzdata location so that week anchoring
// can never drift with the host's timezone database.
var ClinicZone = time.FixedZone("UTC+7", 7*60*60)

// WeekPeriod is a fixed 7-day calendar window. From is always Monday 00:00
// in ClinicZone, stored as a UTC instant; To = From + 7 days. The window is
// half-open: [From, To), so an instant exactly on a boundary belongs to the
// week that starts there.
type WeekPeriod struct {
	From time.Time
	To   time.Time
}

// WeekPeriodOf returns the canonical week period containing t.
// Deterministic and total: any two instants in the same calendar week
// (per the Monday/UTC+7 anchor) yield identical WeekPeriod values.
func WeekPeriodOf(t time.Time) WeekPeriod {
	local := t.In(ClinicZone)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	sinceMonday := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ClinicZone).
		AddDate(0, 0, -sinceMonday)

	from := monday.UTC()
	return WeekPeriod{From: from, To: from.Add(DaysPerWeek * 24 * time.Hour)}
}

// DayOffsetOf returns the index (0..6) of t's calendar day within
// WeekPeriodOf(t). 0 is Monday.
func DayOffsetOf(t time.Time) int {
	return (int(t.In(ClinicZone).Weekday()) + 6) % 7
}

// Contains reports whether t falls inside the half-open window [From, To).
func (p WeekPeriod) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// DayStart returns the start of the day at the given offset, in ClinicZone.
func (p WeekPeriod) DayStart(dayOffset int) time.Time {
	return p.From.In(ClinicZone).AddDate(0, 0, dayOffset)
}

// Equal reports whether two periods denote the same window.
func (p WeekPeriod) Equal(other WeekPeriod) bool {
	return p.From.Equal(other.From) && p.To.Equal(other.To)
}

// IsValid reports whether the period is exactly one week long and anchored
// to Monday 00:00 in ClinicZone.
func (p WeekPeriod) IsValid() bool {
	if p.From.IsZero() || p.To.IsZero() {
		return false
	}
	if p.To.Sub(p.From) != DaysPerWeek*24*time.Hour {
		return false
	}
	local := p.From.In(ClinicZone)
	return local.Weekday() == time.Monday &&
		local.Hour() == 0 && local.Minute() == 0 && local.Second() == 0 && local.Nanosecond() == 0
}
