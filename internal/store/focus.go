package store

import (
	"taskdeck/internal/domain"
	"taskdeck/internal/timeutil"
)

// StartFocusSession makes taskID the focused task. A task that is not done
// moves to in-progress. An unknown task id is a no-op.
func (s *Store) StartFocusSession(taskID string) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfTask(st.Tasks, taskID)
		if i < 0 {
			return false
		}
		now := s.now()
		if st.Tasks[i].Status == domain.StatusTodo {
			st.Tasks[i].Status = domain.StatusInProgress
			st.Tasks[i].UpdatedAt = now
		}
		id := taskID
		started := now
		st.ActiveFocusTaskID = &id
		st.IsFocusModeActive = true
		st.FocusStartedAt = &started
		return true
	})
}

// EndFocusSession clears the focus state and credits the elapsed time to the
// focused task. It returns the credited milliseconds.
func (s *Store) EndFocusSession() int64 {
	var elapsed int64
	s.mutate(func(st *domain.State) bool {
		if !st.IsFocusModeActive && st.ActiveFocusTaskID == nil {
			return false
		}
		now := s.now()
		if st.ActiveFocusTaskID != nil && st.FocusStartedAt != nil {
			elapsed = now.Sub(*st.FocusStartedAt).Milliseconds()
			if i := indexOfTask(st.Tasks, *st.ActiveFocusTaskID); i >= 0 && elapsed > 0 {
				addTime(&st.Tasks[i], timeutil.DayKey(now), elapsed)
			} else {
				elapsed = 0
			}
		}
		clearFocus(st)
		return true
	})
	return elapsed
}

func clearFocus(st *domain.State) {
	st.ActiveFocusTaskID = nil
	st.IsFocusModeActive = false
	st.FocusStartedAt = nil
}
