package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyreminder/internal/model"
)

const (
	CollectionTasks        = "tasks"
	CollectionGroceryTypes = "grocery_types"
	CollectionGroceryItems = "grocery_items"
)

const eventSaved = "saved"

// Store mirrors the most recently saved collections so they can be read
// outside the UI, and records every save in the history table.
type Store struct {
	DB      *sql.DB
	Queries *Queries
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Queries: New(db)}
}

// SaveTasks replaces the task snapshot with tasks, keeping their order.
// source names the file the tasks were saved to.
func (s *Store) SaveTasks(ctx context.Context, source string, tasks []model.Task) error {
	return s.withTx(ctx, func(q *Queries) error {
		before, err := q.ListTasks(ctx)
		if err != nil {
			return err
		}
		if err := q.ClearTasks(ctx); err != nil {
			return err
		}

		after := make([]taskRow, 0, len(tasks))
		for i, task := range tasks {
			row := taskRow{
				Position:    int64(i),
				Deadline:    task.Deadline.Format(time.RFC3339Nano),
				Priority:    task.Priority.String(),
				Description: task.Description,
			}
			if err := q.InsertTask(ctx, row); err != nil {
				return err
			}
			after = append(after, row)
		}

		_, err = q.AddHistory(ctx, historyRow{
			Collection: CollectionTasks,
			Source:     source,
			EventType:  eventSaved,
			Details:    formatSavedDetails(source, taskKeys(before), taskKeys(after)),
		})
		return err
	})
}

func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.Queries.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, err := mapTask(row)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, nil
}

func (s *Store) SaveGroceryTypes(ctx context.Context, source string, types []model.GroceryType) error {
	return s.withTx(ctx, func(q *Queries) error {
		before, err := q.ListGroceryTypes(ctx)
		if err != nil {
			return err
		}
		if err := q.ClearGroceryTypes(ctx); err != nil {
			return err
		}

		after := make([]groceryRow, 0, len(types))
		for i, groceryType := range types {
			row := groceryRow{Position: int64(i), Description: groceryType.Description, Cost: groceryType.Cost}
			if err := q.InsertGroceryType(ctx, row); err != nil {
				return err
			}
			after = append(after, row)
		}

		_, err = q.AddHistory(ctx, historyRow{
			Collection: CollectionGroceryTypes,
			Source:     source,
			EventType:  eventSaved,
			Details:    formatSavedDetails(source, groceryKeys(before), groceryKeys(after)),
		})
		return err
	})
}

func (s *Store) ListGroceryTypes(ctx context.Context) ([]model.GroceryType, error) {
	rows, err := s.Queries.ListGroceryTypes(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.GroceryType, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.GroceryType{Description: row.Description, Cost: row.Cost})
	}
	return result, nil
}

func (s *Store) SaveGroceryItems(ctx context.Context, source string, items []model.GroceryItem) error {
	return s.withTx(ctx, func(q *Queries) error {
		before, err := q.ListGroceryItems(ctx)
		if err != nil {
			return err
		}
		if err := q.ClearGroceryItems(ctx); err != nil {
			return err
		}

		after := make([]groceryRow, 0, len(items))
		for i, item := range items {
			row := groceryRow{Position: int64(i), Description: item.Description, Cost: item.Cost, Units: item.Units}
			if err := q.InsertGroceryItem(ctx, row); err != nil {
				return err
			}
			after = append(after, row)
		}

		_, err = q.AddHistory(ctx, historyRow{
			Collection: CollectionGroceryItems,
			Source:     source,
			EventType:  eventSaved,
			Details:    formatSavedDetails(source, groceryKeys(before), groceryKeys(after)),
		})
		return err
	})
}

func (s *Store) ListGroceryItems(ctx context.Context) ([]model.GroceryItem, error) {
	rows, err := s.Queries.ListGroceryItems(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.GroceryItem, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.GroceryItem{Description: row.Description, Cost: row.Cost, Units: row.Units})
	}
	return result, nil
}

// ListHistory returns the newest entries first. A non-positive limit
// returns everything.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.Queries.ListHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	history := make([]model.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("history %d: %w", row.ID, err)
		}
		history = append(history, model.HistoryEntry{
			ID:         row.ID,
			Collection: row.Collection,
			Source:     row.Source,
			EventType:  row.EventType,
			Details:    row.Details,
			CreatedAt:  createdAt,
		})
	}
	return history, nil
}

func (s *Store) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func mapTask(row taskRow) (model.Task, error) {
	deadline, err := time.Parse(time.RFC3339Nano, row.Deadline)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %d deadline: %w", row.Position, err)
	}
	priority, err := model.ParsePriority(row.Priority)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %d priority: %w", row.Position, err)
	}
	return model.Task{Deadline: deadline, Priority: priority, Description: row.Description}, nil
}

func taskKeys(rows []taskRow) []string {
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.Deadline+"\x00"+row.Priority+"\x00"+row.Description)
	}
	return keys
}

func groceryKeys(rows []groceryRow) []string {
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, fmt.Sprintf("%s\x00%g\x00%g", row.Description, row.Cost, row.Units))
	}
	return keys
}

func formatSavedDetails(source string, before, after []string) string {
	added, removed := diffCounts(before, after)
	return fmt.Sprintf("saved: count=%d added=%d removed=%d source='%s'", len(after), added, removed, valueOrNone(source))
}

// diffCounts compares two multisets of keys.
func diffCounts(before, after []string) (added, removed int) {
	remaining := make(map[string]int, len(before))
	for _, key := range before {
		remaining[key]++
	}
	for _, key := range after {
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		added++
	}
	for _, count := range remaining {
		removed += count
	}
	return added, removed
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}
