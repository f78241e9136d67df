package services

import (
	"fmt"
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/timeutil"
)

const msPerHour = 3_600_000

// ChartMode selects the window of a time chart.
type ChartMode string

const (
	// ChartWeek is a Monday-Sunday week, shifted back by WeekOffset weeks.
	ChartWeek ChartMode = "week"
	// ChartLast7Days is the rolling window ending today.
	ChartLast7Days ChartMode = "last_7_days"
)

// ParseChartMode converts user input to a ChartMode.
func ParseChartMode(s string) (ChartMode, error) {
	switch ChartMode(s) {
	case ChartWeek, ChartLast7Days:
		return ChartMode(s), nil
	case "":
		return ChartWeek, nil
	}
	return "", fmt.Errorf("unknown chart mode %q (expected %q or %q)", s, ChartWeek, ChartLast7Days)
}

// ChartQuery describes the requested window.
type ChartQuery struct {
	Mode       ChartMode
	WeekOffset int
}

// DayPoint is one bar of a time chart.
type DayPoint struct {
	Day   string  `json:"day"` // day key, 2006-01-02
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
}

// Window returns the seven days covered by q relative to now, oldest first.
func Window(q ChartQuery, now time.Time) []time.Time {
	var start time.Time
	if q.Mode == ChartLast7Days {
		start = timeutil.StartOfDay(now).AddDate(0, 0, -6)
	} else {
		start = timeutil.StartOfMondayWeek(now, q.WeekOffset)
	}

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// ChartData sums the time recorded per day on every task of projectID,
// active and archived, in hours. Days without entries are 0.
func ChartData(state domain.State, projectID string, q ChartQuery, now time.Time) []DayPoint {
	return aggregate(state, q, now, func(t domain.Task) bool { return t.ProjectID == projectID })
}

// DailyTotals is ChartData across all projects.
func DailyTotals(state domain.State, q ChartQuery, now time.Time) []DayPoint {
	return aggregate(state, q, now, func(domain.Task) bool { return true })
}

func aggregate(state domain.State, q ChartQuery, now time.Time, include func(domain.Task) bool) []DayPoint {
	days := Window(q, now)
	totals := make(map[string]int64, len(days))
	for _, group := range [][]domain.Task{state.Tasks, state.ArchivedTasks} {
		for _, t := range group {
			if !include(t) {
				continue
			}
			for day, ms := range t.TimeSpentPerDay {
				totals[day] += ms
			}
		}
	}

	points := make([]DayPoint, len(days))
	for i, d := range days {
		key := timeutil.DayKey(d)
		points[i] = DayPoint{
			Day:   key,
			Label: d.Format("Mon"),
			Hours: float64(totals[key]) / msPerHour,
		}
	}
	return points
}

// TotalHours sums the hours of points.
func TotalHours(points []DayPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Hours
	}
	return sum
}
