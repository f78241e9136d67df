package domain

import (
	"time"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Subtask is an ordered checklist item of a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task represents a task in the domain model.
// TotalTimeSpent and TimeSpentPerDay are milliseconds; the per-day map is keyed
// by "YYYY-MM-DD" and may undercount TotalTimeSpent.
type Task struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"projectId"`
	Title           string           `json:"title"`
	Status          TaskStatus       `json:"status"`
	Priority        Priority         `json:"priority"`
	Tag             *string          `json:"tag,omitempty"`
	DueDate         *time.Time       `json:"dueDate,omitempty"`
	Subtasks        []Subtask        `json:"subtasks"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	IsArchived      bool             `json:"isArchived"`
	TotalTimeSpent  int64            `json:"totalTimeSpent"`
	TimeSpentPerDay map[string]int64 `json:"timeSpentPerDay"`
}

// NewTask creates a todo task stamped with now.
func NewTask(id, projectID, title string, priority Priority, now time.Time) Task {
	if priority == "" {
		priority = PriorityMedium
	}
	return Task{
		ID:              id,
		ProjectID:       projectID,
		Title:           title,
		Status:          StatusTodo,
		Priority:        priority,
		Subtasks:        []Subtask{},
		CreatedAt:       now,
		UpdatedAt:       now,
		TimeSpentPerDay: map[string]int64{},
	}
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	if t.ID == "" || t.Title == "" {
		return false
	}
	if !t.Status.IsValid() || !t.Priority.IsValid() {
		return false
	}
	return !t.UpdatedAt.Before(t.CreatedAt)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Tag != nil {
		tag := *t.Tag
		c.Tag = &tag
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		c.CompletedAt = &done
	}
	c.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(c.Subtasks, t.Subtasks)
	c.TimeSpentPerDay = make(map[string]int64, len(t.TimeSpentPerDay))
	for k, v := range t.TimeSpentPerDay {
		c.TimeSpentPerDay[k] = v
	}
	return c
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}
