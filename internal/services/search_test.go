package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskdeck/internal/domain"
)

func TestFilterTasks(t *testing.T) {
	urgent := "Urgent"
	tasks := []domain.Task{
		{ID: "a", ProjectID: "p1", Title: "Write report", Status: domain.StatusTodo, Tag: &urgent},
		{ID: "b", ProjectID: "p1", Title: "Review", Status: domain.StatusDone,
			Subtasks: []domain.Subtask{{ID: "s1", Title: "check the REPORT"}}},
		{ID: "c", ProjectID: "p2", Title: "Groceries", Status: domain.StatusTodo},
	}

	tests := []struct {
		name     string
		criteria TaskCriteria
		want     []string
	}{
		{"no criteria", TaskCriteria{}, []string{"a", "b", "c"}},
		{"project", TaskCriteria{ProjectID: "p1"}, []string{"a", "b"}},
		{"status", TaskCriteria{Status: domain.StatusTodo}, []string{"a", "c"}},
		{"tag ignores case", TaskCriteria{Tag: "urgent"}, []string{"a"}},
		{"text matches title and subtasks", TaskCriteria{Text: "report"}, []string{"a", "b"}},
		{"combined", TaskCriteria{ProjectID: "p1", Text: "report", Status: domain.StatusDone}, []string{"b"}},
		{"nothing matches", TaskCriteria{Text: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterTasks(tasks, tt.criteria)))
		})
	}
}
