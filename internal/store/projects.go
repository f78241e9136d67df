package store

import (
	"taskdeck/internal/domain"
)

// ProjectPatch lists the project fields to change. Nil fields are kept.
type ProjectPatch struct {
	Name  *string
	Color *string
}

// AddProject creates a project. An empty color selects the default color.
func (s *Store) AddProject(name, color string) domain.Project {
	var created domain.Project
	s.mutate(func(st *domain.State) bool {
		created = domain.NewProject(s.newID(), name, color, s.now())
		st.Projects = append(st.Projects, created)
		return true
	})
	return created
}

// UpdateProject applies patch and stamps updatedAt. It reports whether the
// project exists.
func (s *Store) UpdateProject(id string, patch ProjectPatch) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfProject(st.Projects, id)
		if i < 0 {
			return false
		}
		p := st.Projects[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Color != nil {
			p.Color = *patch.Color
		}
		p.UpdatedAt = s.now()
		st.Projects[i] = p
		return true
	})
}

// DeleteProject removes the project and tombstones its id in one step. Tasks
// of the project are left alone.
func (s *Store) DeleteProject(id string) bool {
	return s.mutate(func(st *domain.State) bool {
		i := indexOfProject(st.Projects, id)
		if i < 0 {
			return false
		}
		projects := make([]domain.Project, 0, len(st.Projects)-1)
		projects = append(projects, st.Projects[:i]...)
		st.Projects = append(projects, st.Projects[i+1:]...)
		st.PendingDeletes = st.PendingDeletes.With(domain.KindProject, id)
		return true
	})
}
