package store

import (
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/timeutil"
)

// TaskPatch lists the task fields to change. Nil fields are kept; the Clear
// flags remove optional values.
type TaskPatch struct {
	Title        *string
	ProjectID    *string
	Status       *domain.TaskStatus
	Priority     *domain.Priority
	Tag          *string
	ClearTag     bool
	DueDate      *time.Time
	ClearDueDate bool
	CompletedAt  *time.Time
	Subtasks     []domain.Subtask
}

// AddTask creates a todo task in the given project.
func (s *Store) AddTask(projectID, title string, priority domain.Priority) domain.Task {
	var created domain.Task
	s.mutate(func(st *domain.State) bool {
		created = domain.NewTask(s.newID(), projectID, title, priority, s.now())
		st.Tasks = append(st.Tasks, created)
		return true
	})
	return created.Clone()
}

// UpdateTask merges patch into the active task and stamps updatedAt. Moving
// into "done" stamps completedAt unless the patch supplies one; an explicit
// completedAt is stored verbatim. completedAt survives a status revert.
func (s *Store) UpdateTask(id string, patch TaskPatch) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.Tasks, id)
		if i < 0 {
			return false
		}
		now := s.now()
		t := st.Tasks[i]
		previous := t.Status

		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.ProjectID != nil {
			t.ProjectID = *patch.ProjectID
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.ClearTag {
			t.Tag = nil
		} else if patch.Tag != nil {
			tag := *patch.Tag
			t.Tag = &tag
		}
		if patch.ClearDueDate {
			t.DueDate = nil
		} else if patch.DueDate != nil {
			due := *patch.DueDate
			t.DueDate = &due
		}
		if patch.Subtasks != nil {
			t.Subtasks = append([]domain.Subtask{}, patch.Subtasks...)
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}

		switch {
		case patch.CompletedAt != nil:
			completed := *patch.CompletedAt
			t.CompletedAt = &completed
		case t.Status == domain.StatusDone && previous != domain.StatusDone:
			completed := now
			t.CompletedAt = &completed
		}

		t.UpdatedAt = now
		st.Tasks[i] = t
		return true
	})
}

// DeleteTask removes the task from the active or archived collection and
// tombstones its id in one step. A focus session on the task ends.
func (s *Store) DeleteTask(id string) bool {
	return s.mutate(func(st *domain.State) bool {
		if i := indexOfTask(st.Tasks, id); i >= 0 {
			st.Tasks = removeTaskAt(st.Tasks, i)
		} else if i := indexOfTask(st.ArchivedTasks, id); i >= 0 {
			st.ArchivedTasks = removeTaskAt(st.ArchivedTasks, i)
		} else {
			return false
		}
		st.PendingDeletes = st.PendingDeletes.With(domain.KindTask, id)
		if st.ActiveFocusTaskID != nil && *st.ActiveFocusTaskID == id {
			clearFocus(st)
		}
		return true
	})
}

// ArchiveTask moves an active task to the archived collection.
func (s *Store) ArchiveTask(id string) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.Tasks, id)
		if i < 0 {
			return false
		}
		t := st.Tasks[i]
		t.IsArchived = true
		t.UpdatedAt = s.now()
		st.Tasks = removeTaskAt(st.Tasks, i)
		st.ArchivedTasks = upsertTask(st.ArchivedTasks, t)
		if st.ActiveFocusTaskID != nil && *st.ActiveFocusTaskID == id {
			clearFocus(st)
		}
		return true
	})
}

// RestoreTask moves an archived task back to the active collection.
func (s *Store) RestoreTask(id string) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.ArchivedTasks, id)
		if i < 0 {
			return false
		}
		t := st.ArchivedTasks[i]
		t.IsArchived = false
		t.UpdatedAt = s.now()
		st.ArchivedTasks = removeTaskAt(st.ArchivedTasks, i)
		st.Tasks = upsertTask(st.Tasks, t)
		return true
	})
}

// UpsertArchivedTask inserts or replaces a task in the archived collection.
func (s *Store) UpsertArchivedTask(t domain.Task) {
	s.mutate(func(st *domain.State) bool {
		archived := normalizeTask(t.Clone())
		archived.IsArchived = true
		st.ArchivedTasks = upsertTask(st.ArchivedTasks, archived)
		return true
	})
}

// UpdateTaskTime adds deltaMs to the task's total and to today's bucket.
// Non-positive deltas are ignored so the total never decreases.
func (s *Store) UpdateTaskTime(id string, deltaMs int64) bool {
	if deltaMs <= 0 {
		return false
	}
	return s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.Tasks, id)
		if i < 0 {
			return false
		}
		addTime(&st.Tasks[i], timeutil.DayKey(s.now()), deltaMs)
		return true
	})
}

// AddSubtask appends a subtask to an active task.
func (s *Store) AddSubtask(taskID, title string) (domain.Subtask, bool) {
	var created domain.Subtask
	ok := s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.Tasks, taskID)
		if i < 0 {
			return false
		}
		created = domain.Subtask{ID: s.newID(), Title: title}
		st.Tasks[i].Subtasks = append(st.Tasks[i].Subtasks, created)
		st.Tasks[i].UpdatedAt = s.now()
		return true
	})
	return created, ok
}

// ToggleSubtask flips the completion flag of a subtask.
func (s *Store) ToggleSubtask(taskID, subtaskID string) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.Tasks, taskID)
		if i < 0 {
			return false
		}
		for j := range st.Tasks[i].Subtasks {
			if st.Tasks[i].Subtasks[j].ID == subtaskID {
				st.Tasks[i].Subtasks[j].Completed = !st.Tasks[i].Subtasks[j].Completed
				st.Tasks[i].UpdatedAt = s.now()
				return true
			}
		}
		return false
	})
}

// DeleteSubtask removes a subtask.
func (s *Store) DeleteSubtask(taskID, subtaskID string) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.Tasks, taskID)
		if i < 0 {
			return false
		}
		subtasks := st.Tasks[i].Subtasks
		for j := range subtasks {
			if subtasks[j].ID == subtaskID {
				kept := make([]domain.Subtask, 0, len(subtasks)-1)
				kept = append(kept, subtasks[:j]...)
				st.Tasks[i].Subtasks = append(kept, subtasks[j+1:]...)
				st.Tasks[i].UpdatedAt = s.now()
				return true
			}
		}
		return false
	})
}

// SetSortPreference stores the task list ordering.
func (s *Store) SetSortPreference(pref domain.SortPreference) {
	s.mutate(func(st *domain.State) bool {
		st.Sort = pref
		return true
	})
}

// AddToPendingDelete tombstones id. Adding an existing id changes nothing.
func (s *Store) AddToPendingDelete(kind domain.EntityKind, id string) {
	s.mutate(func(st *domain.State) bool {
		if st.PendingDeletes.Has(kind, id) {
			return false
		}
		st.PendingDeletes = st.PendingDeletes.With(kind, id)
		return true
	})
}

// RemoveFromPendingDelete drops id from the tombstone set of kind.
func (s *Store) RemoveFromPendingDelete(kind domain.EntityKind, id string) {
	s.ConfirmDeleted(kind, []string{id})
}

func addTime(t *domain.Task, day string, deltaMs int64) {
	if t.TimeSpentPerDay == nil {
		t.TimeSpentPerDay = map[string]int64{}
	}
	t.TotalTimeSpent += deltaMs
	t.TimeSpentPerDay[day] += deltaMs
}

// RelocateArchived moves the listed active tasks that are flagged archived
// into the archived collection and tombstones their ids, in one step. It
// returns the number of tasks moved.
func (s *Store) RelocateArchived(ids []string) int {
	moved := 0
	s.mutate(func(st *domain.State) bool {
		wanted := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			wanted[id] = struct{}{}
		}

		active := make([]domain.Task, 0, len(st.Tasks))
		for _, t := range st.Tasks {
			if _, ok := wanted[t.ID]; !ok || !t.IsArchived {
				active = append(active, t)
				continue
			}
			st.ArchivedTasks = upsertTask(st.ArchivedTasks, t)
			st.PendingDeletes = st.PendingDeletes.With(domain.KindTask, t.ID)
			moved++
		}
		st.Tasks = active
		return moved > 0
	})
	return moved
}
