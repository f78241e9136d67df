package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskdeck/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestProjectStatistics(t *testing.T) {
	state := domain.State{
		Tasks: []domain.Task{
			{ID: "1", ProjectID: "p1", Status: domain.StatusTodo},
			{ID: "2", ProjectID: "p1", Status: domain.StatusInProgress},
			{ID: "3", ProjectID: "p1", Status: domain.StatusDone},
			{ID: "4", ProjectID: "p2", Status: domain.StatusDone},
		},
		ArchivedTasks: []domain.Task{
			{ID: "5", ProjectID: "p1", Status: domain.StatusDone, IsArchived: true},
		},
	}

	tests := []struct {
		name      string
		projectID *string
		want      ProjectStats
	}{
		{"nil project", nil, ProjectStats{}},
		{"empty project id", strPtr(""), ProjectStats{}},
		{"unknown project", strPtr("nope"), ProjectStats{}},
		{"one of three done", strPtr("p1"), ProjectStats{Total: 3, Todo: 1, InProgress: 1, Done: 1, Progress: 33}},
		{"all done", strPtr("p2"), ProjectStats{Total: 1, Done: 1, Progress: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectStatistics(state, tt.projectID))
		})
	}
}

func TestProjectStatistics_RoundsHalfUp(t *testing.T) {
	state := domain.State{Tasks: []domain.Task{
		{ProjectID: "p", Status: domain.StatusDone},
		{ProjectID: "p", Status: domain.StatusDone},
		{ProjectID: "p", Status: domain.StatusTodo},
	}}

	assert.Equal(t, 67, ProjectStatistics(state, strPtr("p")).Progress)
}

func TestProjectStatistics_IgnoresArchivedFlagInActiveList(t *testing.T) {
	state := domain.State{Tasks: []domain.Task{
		{ProjectID: "p", Status: domain.StatusDone, IsArchived: true},
		{ProjectID: "p", Status: domain.StatusTodo},
	}}

	stats := ProjectStatistics(state, strPtr("p"))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Progress)
}
