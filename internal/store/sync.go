package store

import (
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/remote"
)

// ApplyOutcome reports what happened to a remote row.
type ApplyOutcome int

const (
	// Applied means the remote version replaced or created the local entity.
	Applied ApplyOutcome = iota
	// Tombstoned means the id awaits remote deletion and the row was dropped.
	Tombstoned
	// Stale means the local entity is as new or newer than the row.
	Stale
)

func (o ApplyOutcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Tombstoned:
		return "tombstoned"
	case Stale:
		return "stale"
	}
	return "unknown"
}

var (
	projectMapper = domain.NewProjectMapper()
	taskMapper    = domain.NewTaskMapper()
)

// ApplyRemoteProject reconciles a remote projects row against the current
// state: a tombstoned id is dropped, otherwise the newer updatedAt wins and
// ties keep the local version.
func (s *Store) ApplyRemoteProject(row remote.Row) (ApplyOutcome, error) {
	outcome := Stale
	var applyErr error
	s.mutate(func(st *domain.State) bool {
		id, ok := domain.RowID(row)
		if ok && st.PendingDeletes.Has(domain.KindProject, id) {
			outcome = Tombstoned
			return false
		}

		var existing *domain.Project
		i := indexOfProject(st.Projects, id)
		if i >= 0 {
			existing = &st.Projects[i]
		}
		incoming, err := projectMapper.FromRemote(row, existing)
		if err != nil {
			applyErr = err
			return false
		}
		if existing != nil && !incoming.UpdatedAt.After(existing.UpdatedAt) {
			return false
		}

		if i >= 0 {
			st.Projects[i] = incoming
		} else {
			st.Projects = append(st.Projects, incoming)
		}
		outcome = Applied
		return true
	})
	return outcome, applyErr
}

// ApplyRemoteTask reconciles a remote tasks row like ApplyRemoteProject. Rows
// flagged is_archived land in the archived collection; local-only fields of
// an existing task are kept.
func (s *Store) ApplyRemoteTask(row remote.Row) (ApplyOutcome, error) {
	outcome := Stale
	var applyErr error
	s.mutate(func(st *domain.State) bool {
		id, ok := domain.RowID(row)
		if ok && st.PendingDeletes.Has(domain.KindTask, id) {
			outcome = Tombstoned
			return false
		}

		var existing *domain.Task
		activeIdx := indexOfTask(st.Tasks, id)
		archivedIdx := indexOfTask(st.ArchivedTasks, id)
		switch {
		case activeIdx >= 0:
			existing = &st.Tasks[activeIdx]
		case archivedIdx >= 0:
			existing = &st.ArchivedTasks[archivedIdx]
		}

		incoming, err := taskMapper.FromRemote(row, existing)
		if err != nil {
			applyErr = err
			return false
		}
		if existing != nil && !incoming.UpdatedAt.After(existing.UpdatedAt) {
			return false
		}

		if activeIdx >= 0 {
			st.Tasks = removeTaskAt(st.Tasks, activeIdx)
		}
		if archivedIdx >= 0 {
			st.ArchivedTasks = removeTaskAt(st.ArchivedTasks, archivedIdx)
		}
		if incoming.IsArchived {
			st.ArchivedTasks = append(st.ArchivedTasks, incoming)
		} else {
			st.Tasks = append(st.Tasks, incoming)
		}
		outcome = Applied
		return true
	})
	return outcome, applyErr
}

// ConfirmDeleted clears the given ids from the tombstone set of kind. Ids
// tombstoned after the caller read the set are kept.
func (s *Store) ConfirmDeleted(kind domain.EntityKind, ids []string) {
	if len(ids) == 0 {
		return
	}
	s.mutate(func(st *domain.State) bool {
		before := len(st.PendingDeletes.IDs(kind))
		st.PendingDeletes = st.PendingDeletes.Without(kind, ids...)
		return len(st.PendingDeletes.IDs(kind)) != before
	})
}

// MarkPushed advances the push cursor.
func (s *Store) MarkPushed(at time.Time) {
	s.mutate(func(st *domain.State) bool {
		pushed := at
		st.LastPushedAt = &pushed
		return true
	})
}
