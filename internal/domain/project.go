package domain

import "time"

// DefaultProjectColor is used when a project is created without a color.
const DefaultProjectColor = "#6366f1"

// Project groups tasks by reference. Tasks outlive their project.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProject creates a project stamped with now.
func NewProject(id, name, color string, now time.Time) Project {
	if color == "" {
		color = DefaultProjectColor
	}
	return Project{
		ID:        id,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsValid checks if the project has valid data.
func (p Project) IsValid() bool {
	return p.ID != "" && p.Name != "" && !p.UpdatedAt.Before(p.CreatedAt)
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}
