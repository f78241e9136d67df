// Package services derives read-only views from store snapshots: project
// progress and per-day time charts. Every function is pure.
package services

import (
	"math"

	"taskdeck/internal/domain"
)

// ProjectStats summarizes the active tasks of one project.
type ProjectStats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Done       int `json:"done"`
	Progress   int `json:"progress"` // percent done, rounded
}

// ProjectStatistics counts the active tasks of projectID by status. A nil or
// empty id yields the zero value.
func ProjectStatistics(state domain.State, projectID *string) ProjectStats {
	var stats ProjectStats
	if projectID == nil || *projectID == "" {
		return stats
	}

	for _, t := range state.Tasks {
		if t.ProjectID != *projectID || t.IsArchived {
			continue
		}
		stats.Total++
		switch t.Status {
		case domain.StatusTodo:
			stats.Todo++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusDone:
			stats.Done++
		}
	}

	if stats.Total > 0 {
		stats.Progress = int(math.Round(float64(stats.Done) / float64(stats.Total) * 100))
	}
	return stats
}
