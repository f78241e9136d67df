package services

import (
	"sort"
	"strings"

	"taskdeck/internal/domain"
)

var priorityRank = map[domain.Priority]int{
	domain.PriorityLow:    0,
	domain.PriorityMedium: 1,
	domain.PriorityHigh:   2,
}

// SortTasks returns a copy of tasks ordered by pref. Tasks without a due
// date sort last in both directions; ties fall back to creation time.
func SortTasks(tasks []domain.Task, pref domain.SortPreference) []domain.Task {
	out := append([]domain.Task(nil), tasks...)

	less := func(a, b domain.Task) (bool, bool) {
		switch pref.Field {
		case domain.SortByTitle:
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			return at < bt, at == bt
		case domain.SortByPriority:
			ar, br := priorityRank[a.Priority], priorityRank[b.Priority]
			return ar < br, ar == br
		case domain.SortByDueDate:
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return false, true
			case a.DueDate == nil:
				return !pref.Ascending, false
			case b.DueDate == nil:
				return pref.Ascending, false
			}
			return a.DueDate.Before(*b.DueDate), a.DueDate.Equal(*b.DueDate)
		}
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		lt, eq := less(out[i], out[j])
		if eq {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if pref.Ascending {
			return lt
		}
		return !lt
	})
	return out
}
