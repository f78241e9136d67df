package remote

import "time"

// ProjectRecord is the gorm model of the projects table.
type ProjectRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"not null"`
	Color     string    `gorm:"size:16"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
	Owner     string    `gorm:"size:64;index"`
}

// TableName pins the table name.
func (ProjectRecord) TableName() string { return TableProjects }

// TaskRecord is the gorm model of the tasks table.
type TaskRecord struct {
	ID         string    `gorm:"primaryKey;size:36"`
	ProjectID  string    `gorm:"size:36;index"`
	Title      string    `gorm:"not null"`
	Status     string    `gorm:"size:20;not null;default:'todo'"`
	Priority   string    `gorm:"size:20;not null;default:'medium'"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false"`
	IsArchived bool      `gorm:"not null;default:false"`
	Owner      string    `gorm:"size:64;index"`
}

// TableName pins the table name.
func (TaskRecord) TableName() string { return TableTasks }

// ProfileRecord is the gorm model of the profiles table.
type ProfileRecord struct {
	ID    string `gorm:"primaryKey;size:64"`
	IsPro bool   `gorm:"not null;default:false"`
}

// TableName pins the table name.
func (ProfileRecord) TableName() string { return TableProfiles }
