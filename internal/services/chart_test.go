package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/domain"
)

// Wednesday.
var chartNow = time.Date(2026, 1, 14, 15, 30, 0, 0, time.UTC)

func chartState() domain.State {
	return domain.State{
		Tasks: []domain.Task{
			{ID: "a", ProjectID: "p1", TimeSpentPerDay: map[string]int64{"2026-01-11": 3_600_000, "2026-01-12": 1_800_000}},
			{ID: "b", ProjectID: "p2", TimeSpentPerDay: map[string]int64{"2026-01-12": 3_600_000}},
		},
		ArchivedTasks: []domain.Task{
			{ID: "c", ProjectID: "p1", IsArchived: true, TimeSpentPerDay: map[string]int64{"2026-01-13": 900_000}},
		},
	}
}

func hoursByDay(points []DayPoint) map[string]float64 {
	out := make(map[string]float64, len(points))
	for _, p := range points {
		out[p.Day] = p.Hours
	}
	return out
}

func TestChartData_Week(t *testing.T) {
	points := ChartData(chartState(), "p1", ChartQuery{Mode: ChartWeek}, chartNow)

	require.Len(t, points, 7)
	assert.Equal(t, "2026-01-12", points[0].Day)
	assert.Equal(t, "Mon", points[0].Label)
	assert.Equal(t, "2026-01-18", points[6].Day)

	hours := hoursByDay(points)
	assert.Equal(t, 0.5, hours["2026-01-12"])
	assert.Equal(t, 0.25, hours["2026-01-13"])
	assert.Equal(t, 0.0, hours["2026-01-16"])
}

func TestChartData_PreviousWeekIncludesSunday(t *testing.T) {
	points := ChartData(chartState(), "p1", ChartQuery{Mode: ChartWeek, WeekOffset: 1}, chartNow)

	require.Len(t, points, 7)
	assert.Equal(t, "2026-01-05", points[0].Day)
	last := points[6]
	assert.Equal(t, "2026-01-11", last.Day)
	assert.Equal(t, "Sun", last.Label)
	assert.Equal(t, 1.0, last.Hours)
}

func TestChartData_Last7Days(t *testing.T) {
	points := ChartData(chartState(), "p1", ChartQuery{Mode: ChartLast7Days}, chartNow)

	require.Len(t, points, 7)
	assert.Equal(t, "2026-01-08", points[0].Day)
	assert.Equal(t, "2026-01-14", points[6].Day)
	assert.Equal(t, 1.0, hoursByDay(points)["2026-01-11"])
	assert.InDelta(t, 1.75, TotalHours(points), 1e-9)
}

func TestChartData_UnknownProjectIsAllZero(t *testing.T) {
	points := ChartData(chartState(), "missing", ChartQuery{Mode: ChartLast7Days}, chartNow)

	require.Len(t, points, 7)
	assert.Zero(t, TotalHours(points))
}

func TestDailyTotals(t *testing.T) {
	points := DailyTotals(chartState(), ChartQuery{Mode: ChartWeek}, chartNow)

	assert.Equal(t, 1.5, hoursByDay(points)["2026-01-12"])
}

func TestParseChartMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ChartMode
		wantErr bool
	}{
		{"week", ChartWeek, false},
		{"last_7_days", ChartLast7Days, false},
		{"", ChartWeek, false},
		{"month", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChartMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
