package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingDeletes(t *testing.T) {
	p := PendingDeletes{Projects: []string{}, Tasks: []string{}}

	p = p.With(KindTask, "t1")
	p = p.With(KindTask, "t1")
	p = p.With(KindProject, "p1")

	assert.Equal(t, []string{"t1"}, p.Tasks)
	assert.Equal(t, []string{"p1"}, p.Projects)
	assert.True(t, p.Has(KindTask, "t1"))
	assert.False(t, p.Has(KindProject, "t1"))

	p = p.With(KindTask, "t2").Without(KindTask, "t1", "missing")
	assert.Equal(t, []string{"t2"}, p.Tasks)
	assert.Equal(t, []string{"p1"}, p.Projects)
}

func TestPendingDeletes_WithDoesNotAlias(t *testing.T) {
	base := PendingDeletes{Tasks: make([]string, 1, 4)}
	base.Tasks[0] = "a"

	left := base.With(KindTask, "b")
	right := base.With(KindTask, "c")

	assert.Equal(t, []string{"a", "b"}, left.Tasks)
	assert.Equal(t, []string{"a", "c"}, right.Tasks)
}

func TestParseEntityKind(t *testing.T) {
	kind, err := ParseEntityKind("project")
	require.NoError(t, err)
	assert.Equal(t, KindProject, kind)

	_, err = ParseEntityKind("note")
	assert.Error(t, err)
}

func TestState_CloneIsDeep(t *testing.T) {
	now := time.Now()
	focus := "t1"
	s := NewState()
	s.Projects = append(s.Projects, NewProject("p1", "Work", "", now))
	s.Tasks = append(s.Tasks, NewTask("t1", "p1", "Plan", PriorityLow, now))
	s.PendingDeletes = s.PendingDeletes.With(KindTask, "gone")
	s.User = &User{ID: "u1"}
	s.ActiveFocusTaskID = &focus

	c := s.Clone()
	c.Projects[0].Name = "changed"
	c.Tasks[0].TimeSpentPerDay["2026-01-01"] = 1
	c.PendingDeletes.Tasks[0] = "other"
	c.User.ID = "u2"
	*c.ActiveFocusTaskID = "t2"

	assert.Equal(t, "Work", s.Projects[0].Name)
	assert.Empty(t, s.Tasks[0].TimeSpentPerDay)
	assert.Equal(t, []string{"gone"}, s.PendingDeletes.Tasks)
	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, "t1", *s.ActiveFocusTaskID)
}

func TestState_Find(t *testing.T) {
	s := NewState()
	s.Tasks = []Task{{ID: "t1", Title: "one"}}
	s.Projects = []Project{{ID: "p1", Name: "proj"}}

	task, ok := s.FindTask("t1")
	assert.True(t, ok)
	assert.Equal(t, "one", task.Title)

	_, ok = s.FindTask("nope")
	assert.False(t, ok)

	_, ok = s.FindProject("p1")
	assert.True(t, ok)
}
