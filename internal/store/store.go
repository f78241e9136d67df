// Package store holds the local application state. Every change to projects,
// tasks, tombstones, the session or focus state goes through a Store method;
// each method runs under one lock and is visible to the next read.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/domain"
	"taskdeck/internal/remote"
)

// Persister receives a snapshot after every mutation. Save is called with the
// store lock held and must not block.
type Persister interface {
	Save(state domain.State)
}

// Store is the single source of truth for local state.
type Store struct {
	mu        sync.Mutex
	state     domain.State
	remote    remote.Store
	persister Persister
	now       func() time.Time
	newID     func() string

	profileTimeout time.Duration
	background     sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithRemote sets the backend used for profile fetches and sign-out.
func WithRemote(r remote.Store) Option {
	return func(s *Store) { s.remote = r }
}

// WithPersister sets the write-through persister.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUIDv4 generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithProfileTimeout bounds the background profile fetch.
func WithProfileTimeout(d time.Duration) Option {
	return func(s *Store) { s.profileTimeout = d }
}

// New creates a store in the initial state.
func New(opts ...Option) *Store {
	s := &Store{
		state:          domain.NewState(),
		now:            time.Now,
		newID:          func() string { return uuid.NewString() },
		profileTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Reset restores the initial empty state.
func (s *Store) Reset() {
	s.mutate(func(st *domain.State) bool {
		*st = domain.NewState()
		return true
	})
}

// Hydrate replaces the state with a previously persisted snapshot. The
// loading flag is kept; call SetSession to resolve it.
func (s *Store) Hydrate(state domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loading := s.state.Loading
	s.state = normalize(state.Clone())
	s.state.Loading = loading
}

// Wait blocks until background work started by the store has finished.
func (s *Store) Wait() {
	s.background.Wait()
}

// mutate applies fn under the lock and persists the result when fn reports a
// change.
func (s *Store) mutate(fn func(st *domain.State) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(&s.state) {
		return false
	}
	if s.persister != nil {
		s.persister.Save(s.state.Clone())
	}
	return true
}

// normalize replaces nil collections from older snapshots with empty ones.
func normalize(st domain.State) domain.State {
	if st.Projects == nil {
		st.Projects = []domain.Project{}
	}
	if st.Tasks == nil {
		st.Tasks = []domain.Task{}
	}
	if st.ArchivedTasks == nil {
		st.ArchivedTasks = []domain.Task{}
	}
	if st.PendingDeletes.Projects == nil {
		st.PendingDeletes.Projects = []string{}
	}
	if st.PendingDeletes.Tasks == nil {
		st.PendingDeletes.Tasks = []string{}
	}
	for i := range st.Tasks {
		st.Tasks[i] = normalizeTask(st.Tasks[i])
	}
	for i := range st.ArchivedTasks {
		st.ArchivedTasks[i] = normalizeTask(st.ArchivedTasks[i])
	}
	if st.Sort.Field == "" {
		st.Sort.Field = domain.SortByCreated
	}
	return st
}

func normalizeTask(t domain.Task) domain.Task {
	if t.Subtasks == nil {
		t.Subtasks = []domain.Subtask{}
	}
	if t.TimeSpentPerDay == nil {
		t.TimeSpentPerDay = map[string]int64{}
	}
	return t
}

func indexOfTask(tasks []domain.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func indexOfProject(projects []domain.Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func removeTaskAt(tasks []domain.Task, i int) []domain.Task {
	out := make([]domain.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

// upsertTask replaces the task with the same id or appends it.
func upsertTask(tasks []domain.Task, t domain.Task) []domain.Task {
	if i := indexOfTask(tasks, t.ID); i >= 0 {
		tasks[i] = t
		return tasks
	}
	return append(tasks, t)
}
