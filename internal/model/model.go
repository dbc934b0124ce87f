package model

import (
	"math"
	"time"
)

const (
	DefaultTaskDescription    = "No description"
	DefaultGroceryDescription = "No Description"
)

type Task struct {
	Deadline    time.Time `json:"deadline"`
	Priority    Priority  `json:"priority"`
	Description string    `json:"description"`
}

// NewTask never fails: an empty description is replaced with
// DefaultTaskDescription. The deadline is not validated here.
func NewTask(deadline time.Time, priority Priority, description string) Task {
	task := Task{Deadline: deadline, Priority: priority}
	task.SetDescription(description)
	return task
}

func (t *Task) SetDescription(description string) {
	t.Description = NormalizeDescription(description)
}

// NormalizeDescription maps an empty task description to the default.
func NormalizeDescription(description string) string {
	if description == "" {
		return DefaultTaskDescription
	}
	return description
}

// Normalized returns a copy of t with every field normalization applied.
func (t Task) Normalized() Task {
	t.SetDescription(t.Description)
	return t
}

type GroceryType struct {
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

func NewGroceryType(description string, cost float64) GroceryType {
	return GroceryType{
		Description: NormalizeGroceryDescription(description),
		Cost:        NormalizeAmount(cost),
	}
}

func (g GroceryType) Normalized() GroceryType {
	return NewGroceryType(g.Description, g.Cost)
}

type GroceryItem struct {
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Units       float64 `json:"units"`
}

func NewGroceryItem(description string, cost, units float64) GroceryItem {
	return GroceryItem{
		Description: NormalizeGroceryDescription(description),
		Cost:        NormalizeAmount(cost),
		Units:       NormalizeAmount(units),
	}
}

func (g GroceryItem) Normalized() GroceryItem {
	return NewGroceryItem(g.Description, g.Cost, g.Units)
}

func (g GroceryItem) TotalCost() float64 {
	return NormalizeAmount(g.Cost * g.Units)
}

func NormalizeGroceryDescription(description string) string {
	if description == "" {
		return DefaultGroceryDescription
	}
	return description
}

// NormalizeAmount clamps negative and non-finite costs and unit counts to
// zero.
func NormalizeAmount(value float64) float64 {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// HistoryEntry records one snapshot write.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	Collection string    `json:"collection"`
	Source     string    `json:"source"`
	EventType  string    `json:"event_type"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}
