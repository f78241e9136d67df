package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/remote"
)

// remoteTimeLayouts are the timestamp shapes remote drivers hand back as text.
var remoteTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// ParseRemoteTime converts a remote updated_at value to a time.Time.
func ParseRemoteTime(v interface{}) (time.Time, error) {
	switch value := v.(type) {
	case time.Time:
		return value, nil
	case *time.Time:
		if value != nil {
			return *value, nil
		}
	case []byte:
		return ParseRemoteTime(string(value))
	case string:
		for _, layout := range remoteTimeLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp value %T", v)
}

// RowID returns the id column of a remote row.
func RowID(row remote.Row) (string, bool) {
	id := rowString(row, "id")
	return id, id != ""
}

func rowString(row remote.Row, column string) string {
	switch v := row[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func rowBool(row remote.Row, column string) bool {
	switch v := row[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case int32:
		return v != 0
	case float64:
		return v != 0
	case []byte:
		b, _ := strconv.ParseBool(strings.TrimSpace(string(v)))
		return b
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// ProjectMapper converts between domain projects and remote project rows.
type ProjectMapper struct{}

// NewProjectMapper creates a new ProjectMapper instance.
func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

// ToRemote converts a project to a row owned by owner.
func (m *ProjectMapper) ToRemote(p Project, owner string) remote.Row {
	return remote.Row{
		"id":         p.ID,
		"name":       p.Name,
		"color":      p.Color,
		"updated_at": p.UpdatedAt.UTC(),
		"owner":      owner,
	}
}

// FromRemote converts a remote row to a project. When existing is non-nil its
// creation time is kept.
func (m *ProjectMapper) FromRemote(row remote.Row, existing *Project) (Project, error) {
	id, ok := RowID(row)
	if !ok {
		return Project{}, fmt.Errorf("project row without id")
	}
	updatedAt, err := ParseRemoteTime(row["updated_at"])
	if err != nil {
		return Project{}, fmt.Errorf("project %s: %w", id, err)
	}

	p := NewProject(id, rowString(row, "name"), rowString(row, "color"), updatedAt)
	if existing != nil {
		p.CreatedAt = existing.CreatedAt
	}
	return p, nil
}

// TaskMapper converts between domain tasks and remote task rows. The remote
// row carries only the shared columns; time tracking, subtasks and the
// remaining local fields stay on the device.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToRemote converts a task to a row owned by owner.
func (m *TaskMapper) ToRemote(t Task, owner string) remote.Row {
	return remote.Row{
		"id":          t.ID,
		"project_id":  t.ProjectID,
		"title":       t.Title,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"updated_at":  t.UpdatedAt.UTC(),
		"is_archived": t.IsArchived,
		"owner":       owner,
	}
}

// FromRemote converts a remote row to a task, merged onto existing when the
// task is already known locally.
func (m *TaskMapper) FromRemote(row remote.Row, existing *Task) (Task, error) {
	id, ok := RowID(row)
	if !ok {
		return Task{}, fmt.Errorf("task row without id")
	}
	updatedAt, err := ParseRemoteTime(row["updated_at"])
	if err != nil {
		return Task{}, fmt.Errorf("task %s: %w", id, err)
	}

	var t Task
	if existing != nil {
		t = existing.Clone()
	} else {
		t = NewTask(id, "", "", PriorityMedium, updatedAt)
	}
	t.ProjectID = rowString(row, "project_id")
	t.Title = rowString(row, "title")
	if status := TaskStatus(rowString(row, "status")); status.IsValid() {
		t.Status = status
	}
	if priority := Priority(rowString(row, "priority")); priority.IsValid() {
		t.Priority = priority
	}
	t.IsArchived = rowBool(row, "is_archived")
	t.UpdatedAt = updatedAt

	// Rows carry no completion column, so a known stamp outlives a status
	// change and a done row without one is stamped with its updated_at.
	if t.Status == StatusDone && t.CompletedAt == nil {
		completed := updatedAt
		t.CompletedAt = &completed
	}
	return t, nil
}

// ProfileFromRemote converts a profiles row.
func ProfileFromRemote(row remote.Row) (Profile, error) {
	id, ok := RowID(row)
	if !ok {
		return Profile{}, fmt.Errorf("profile row without id")
	}
	return Profile{ID: id, IsPro: rowBool(row, "is_pro")}, nil
}
