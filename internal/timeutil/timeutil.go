// Package timeutil converts between duration components and milliseconds and
// computes the Monday-aligned week windows used for time aggregation.
package timeutil

import (
	"fmt"
	"time"
)

// DayKeyLayout is the layout of the per-day keys in Task.TimeSpentPerDay.
const DayKeyLayout = "2006-01-02"

// TimeParts is a duration split into hours, minutes and seconds.
type TimeParts struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// NormalizeTime converts hours, minutes and seconds to milliseconds.
// Components may overflow (90 minutes is fine); nothing is clamped or rejected.
func NormalizeTime(hours, minutes, seconds int64) int64 {
	return (hours*3600 + minutes*60 + seconds) * 1000
}

// ParseTime splits milliseconds into hours, minutes and seconds.
// Sub-second remainders are dropped.
func ParseTime(ms int64) TimeParts {
	total := ms / 1000
	return TimeParts{
		Hours:   total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// Milliseconds is NormalizeTime applied to p.
func (p TimeParts) Milliseconds() int64 {
	return NormalizeTime(p.Hours, p.Minutes, p.Seconds)
}

// StartOfMondayWeek returns midnight of the Monday on or before t, moved back
// weekOffset further weeks. Sunday belongs to the week that started six days
// earlier.
func StartOfMondayWeek(t time.Time, weekOffset int) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-daysSinceMonday-7*weekOffset, 0, 0, 0, 0, t.Location())
}

// WeekRangeLabel formats the Monday-Sunday span of StartOfMondayWeek as
// "Jan 19 - Jan 25".
func WeekRangeLabel(t time.Time, weekOffset int) string {
	start := StartOfMondayWeek(t, weekOffset)
	end := start.AddDate(0, 0, 6)
	return start.Format("Jan 2") + " - " + end.Format("Jan 2")
}

// DayKey returns the calendar day of t in its own location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey parses a day key in UTC.
func ParseDayKey(day string) (time.Time, error) {
	return time.Parse(DayKeyLayout, day)
}

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDuration renders milliseconds as "1h 02m 03s".
func FormatDuration(ms int64) string {
	p := ParseTime(ms)
	return fmt.Sprintf("%dh %02dm %02ds", p.Hours, p.Minutes, p.Seconds)
}
