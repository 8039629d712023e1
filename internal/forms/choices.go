package forms

import (
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/models"
)

// Choice is one entry of a reference dropdown
type Choice struct {
	ID    int64
	Label string
}

// ProjectChoices lists "no project" followed by every cached project
func ProjectChoices(snap cache.Snapshot) []Choice {
	choices := []Choice{{ID: 0, Label: cache.NoProject}}
	for _, p := range snap.Projects {
		choices = append(choices, Choice{ID: p.ID, Label: p.Name})
	}
	return choices
}

// UserChoices lists "unassigned" followed by every cached user
func UserChoices(snap cache.Snapshot) []Choice {
	choices := []Choice{{ID: 0, Label: cache.Unassigned}}
	for _, u := range snap.Users {
		choices = append(choices, Choice{ID: u.ID, Label: u.Username})
	}
	return choices
}

// Cycle moves from current by delta, wrapping around. An id missing from
// choices starts from the first entry.
func Cycle(choices []Choice, current int64, delta int) int64 {
	if len(choices) == 0 {
		return 0
	}
	idx := 0
	for i, c := range choices {
		if c.ID == current {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%len(choices) + len(choices)) % len(choices)
	return choices[idx].ID
}

// Label returns the label for id, or fallback when it is not a choice
func Label(choices []Choice, id int64, fallback string) string {
	for _, c := range choices {
		if c.ID == id {
			return c.Label
		}
	}
	return fallback
}

// CycleStatus steps through the known statuses
func CycleStatus(current models.Status, delta int) models.Status {
	return cycleValue(models.Statuses, current, delta)
}

// CyclePriority steps through the known priorities
func CyclePriority(current models.Priority, delta int) models.Priority {
	return cycleValue(models.Priorities, current, delta)
}

func cycleValue[T comparable](values []T, current T, delta int) T {
	idx := 0
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%len(values) + len(values)) % len(values)
	return values[idx]
}
