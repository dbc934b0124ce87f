// Package tasks keeps the deadline-ordered task list and its file format.
package tasks

import (
	"sort"
	"time"

	"github.com/Joseda-hg/lazyreminder/internal/model"
)

// Store owns an ordered list of tasks. The list is sorted by ascending
// deadline at all times; tasks with equal deadlines keep insertion order.
// A Store is not safe for concurrent use.
type Store struct {
	tasks []model.Task
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Len() int {
	return len(s.tasks)
}

// GetTask reports false when index is out of range.
func (s *Store) GetTask(index int) (model.Task, bool) {
	if !s.inRange(index) {
		return model.Task{}, false
	}
	return s.tasks[index], true
}

// AddTask inserts a new task before the first task whose deadline is
// strictly later, or appends it when there is none.
func (s *Store) AddTask(deadline time.Time, priority model.Priority, description string) {
	s.insert(model.NewTask(deadline, priority, description))
}

// RemoveTask is a no-op when index is out of range.
func (s *Store) RemoveTask(index int) bool {
	if !s.inRange(index) {
		return false
	}
	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	return true
}

// EditTask replaces the task at index and moves it to the position its
// deadline requires. It is a no-op when index is out of range.
func (s *Store) EditTask(index int, updated model.Task) bool {
	if !s.RemoveTask(index) {
		return false
	}
	s.insert(updated.Normalized())
	return true
}

// Tasks returns a copy of the ordered list.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Clear() {
	s.tasks = nil
}

func (s *Store) insert(task model.Task) {
	index := insertionIndex(s.tasks, task.Deadline)
	s.tasks = append(s.tasks, model.Task{})
	copy(s.tasks[index+1:], s.tasks[index:])
	s.tasks[index] = task
}

func (s *Store) inRange(index int) bool {
	return index >= 0 && index < len(s.tasks)
}

// insertionIndex returns the index of the first task with a deadline
// strictly after deadline, or len(tasks).
func insertionIndex(tasks []model.Task, deadline time.Time) int {
	return sort.Search(len(tasks), func(i int) bool {
		return tasks[i].Deadline.After(deadline)
	})
}
