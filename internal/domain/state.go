package domain

import (
	"fmt"
	"time"
)

// EntityKind partitions pending deletions.
type EntityKind string

const (
	KindProject EntityKind = "project"
	KindTask    EntityKind = "task"
)

// ParseEntityKind converts user input to an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindProject, KindTask:
		return EntityKind(s), nil
	}
	return "", fmt.Errorf("unknown entity kind: %q", s)
}

// PendingDeletes holds tombstones: ids deleted locally whose remote deletion
// has not been confirmed yet.
type PendingDeletes struct {
	Projects []string `json:"projects"`
	Tasks    []string `json:"tasks"`
}

// IDs returns the tombstone set of the given kind.
func (p PendingDeletes) IDs(kind EntityKind) []string {
	if kind == KindProject {
		return p.Projects
	}
	return p.Tasks
}

// Has reports whether id is tombstoned for kind.
func (p PendingDeletes) Has(kind EntityKind, id string) bool {
	for _, existing := range p.IDs(kind) {
		if existing == id {
			return true
		}
	}
	return false
}

// With returns a copy with id added to kind's set. Adding twice is a no-op.
func (p PendingDeletes) With(kind EntityKind, id string) PendingDeletes {
	if p.Has(kind, id) {
		return p
	}
	ids := append(append([]string{}, p.IDs(kind)...), id)
	return p.replace(kind, ids)
}

// Without returns a copy with the given ids removed from kind's set.
func (p PendingDeletes) Without(kind EntityKind, ids ...string) PendingDeletes {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := []string{}
	for _, existing := range p.IDs(kind) {
		if _, ok := drop[existing]; !ok {
			kept = append(kept, existing)
		}
	}
	return p.replace(kind, kept)
}

func (p PendingDeletes) replace(kind EntityKind, ids []string) PendingDeletes {
	if kind == KindProject {
		p.Projects = ids
	} else {
		p.Tasks = ids
	}
	return p
}

// SortField selects the task list ordering.
type SortField string

const (
	SortByCreated  SortField = "createdAt"
	SortByDueDate  SortField = "dueDate"
	SortByPriority SortField = "priority"
	SortByTitle    SortField = "title"
)

// SortPreference is the persisted task list ordering.
type SortPreference struct {
	Field     SortField `json:"field"`
	Ascending bool      `json:"ascending"`
}

// State is the whole local store content. Values returned by the store are
// deep copies and safe to keep.
type State struct {
	Projects          []Project      `json:"projects"`
	Tasks             []Task         `json:"tasks"`
	ArchivedTasks     []Task         `json:"archivedTasks"`
	PendingDeletes    PendingDeletes `json:"pendingDeletes"`
	Session           *Session       `json:"session,omitempty"`
	User              *User          `json:"user,omitempty"`
	Profile           *Profile       `json:"profile,omitempty"`
	Loading           bool           `json:"-"`
	ActiveFocusTaskID *string        `json:"activeFocusTaskId,omitempty"`
	IsFocusModeActive bool           `json:"isFocusModeActive"`
	FocusStartedAt    *time.Time     `json:"focusStartedAt,omitempty"`
	Sort              SortPreference `json:"sort"`
	LastPushedAt      *time.Time     `json:"lastPushedAt,omitempty"`
}

// NewState returns the initial empty state.
func NewState() State {
	return State{
		Projects:       []Project{},
		Tasks:          []Task{},
		ArchivedTasks:  []Task{},
		PendingDeletes: PendingDeletes{Projects: []string{}, Tasks: []string{}},
		Loading:        true,
		Sort:           SortPreference{Field: SortByCreated},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	c.Projects = append([]Project{}, s.Projects...)
	c.Tasks = cloneTasks(s.Tasks)
	c.ArchivedTasks = cloneTasks(s.ArchivedTasks)
	c.PendingDeletes = PendingDeletes{
		Projects: append([]string{}, s.PendingDeletes.Projects...),
		Tasks:    append([]string{}, s.PendingDeletes.Tasks...),
	}
	if s.Session != nil {
		session := *s.Session
		c.Session = &session
	}
	if s.User != nil {
		user := *s.User
		c.User = &user
	}
	if s.Profile != nil {
		profile := *s.Profile
		c.Profile = &profile
	}
	if s.ActiveFocusTaskID != nil {
		id := *s.ActiveFocusTaskID
		c.ActiveFocusTaskID = &id
	}
	if s.FocusStartedAt != nil {
		started := *s.FocusStartedAt
		c.FocusStartedAt = &started
	}
	if s.LastPushedAt != nil {
		pushed := *s.LastPushedAt
		c.LastPushedAt = &pushed
	}
	return c
}

// FindTask returns the active task with the given id.
func (s State) FindTask(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// FindProject returns the project with the given id.
func (s State) FindProject(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
