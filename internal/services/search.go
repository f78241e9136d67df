package services

import (
	"strings"

	"taskdeck/internal/domain"
)

// TaskCriteria narrows a task list. Zero fields match everything.
type TaskCriteria struct {
	ProjectID string
	Status    domain.TaskStatus
	Tag       string
	Text      string
}

// FilterTasks returns the tasks matching every criterion, in input order.
func FilterTasks(tasks []domain.Task, c TaskCriteria) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.ProjectID != "" && t.ProjectID != c.ProjectID {
			continue
		}
		if c.Status != "" && t.Status != c.Status {
			continue
		}
		if c.Tag != "" && !strings.EqualFold(tagOf(t), c.Tag) {
			continue
		}
		if !matchesText(t, c.Text) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// matchesText does a case-insensitive substring match on the title and
// subtask titles.
func matchesText(t domain.Task, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	for _, s := range t.Subtasks {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			return true
		}
	}
	return false
}

func tagOf(t domain.Task) string {
	if t.Tag == nil {
		return ""
	}
	return *t.Tag
}
