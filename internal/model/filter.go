package model

import (
	"strings"
	"time"
)

// TaskFilter narrows a task list. Zero fields match everything.
type TaskFilter struct {
	Query     string
	Priority  *Priority
	DueBefore *time.Time
	DueAfter  *time.Time
}

func (f TaskFilter) Matches(task Task) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(task.Description), strings.ToLower(f.Query)) {
		return false
	}
	if f.Priority != nil && task.Priority != *f.Priority {
		return false
	}
	if f.DueBefore != nil && !task.Deadline.Before(*f.DueBefore) {
		return false
	}
	if f.DueAfter != nil && !task.Deadline.After(*f.DueAfter) {
		return false
	}
	return true
}

// Apply returns the matching tasks in their original order.
func (f TaskFilter) Apply(tasks []Task) []Task {
	result := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Matches(task) {
			result = append(result, task)
		}
	}
	return result
}
