package db

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the SQL used by Store. It runs against either the pool or
// a transaction.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type taskRow struct {
	Position    int64
	Deadline    string
	Priority    string
	Description string
}

type groceryRow struct {
	Position    int64
	Description string
	Cost        float64
	Units       float64
}

type historyRow struct {
	ID         int64
	Collection string
	Source     string
	EventType  string
	Details    string
	CreatedAt  string
}

const clearTasks = `DELETE FROM tasks`

func (q *Queries) ClearTasks(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearTasks)
	return err
}

const insertTask = `INSERT INTO tasks (position, deadline, priority, description) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertTask(ctx context.Context, row taskRow) error {
	_, err := q.db.ExecContext(ctx, insertTask, row.Position, row.Deadline, row.Priority, row.Description)
	return err
}

const listTasks = `SELECT position, deadline, priority, description FROM tasks ORDER BY position`

func (q *Queries) ListTasks(ctx context.Context) ([]taskRow, error) {
	rows, err := q.db.QueryContext(ctx, listTasks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []taskRow
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(&row.Position, &row.Deadline, &row.Priority, &row.Description); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

const clearGroceryTypes = `DELETE FROM grocery_types`

func (q *Queries) ClearGroceryTypes(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearGroceryTypes)
	return err
}

const insertGroceryType = `INSERT INTO grocery_types (position, description, cost) VALUES (?, ?, ?)`

func (q *Queries) InsertGroceryType(ctx context.Context, row groceryRow) error {
	_, err := q.db.ExecContext(ctx, insertGroceryType, row.Position, row.Description, row.Cost)
	return err
}

const listGroceryTypes = `SELECT position, description, cost FROM grocery_types ORDER BY position`

func (q *Queries) ListGroceryTypes(ctx context.Context) ([]groceryRow, error) {
	rows, err := q.db.QueryContext(ctx, listGroceryTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []groceryRow
	for rows.Next() {
		var row groceryRow
		if err := rows.Scan(&row.Position, &row.Description, &row.Cost); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

const clearGroceryItems = `DELETE FROM grocery_items`

func (q *Queries) ClearGroceryItems(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearGroceryItems)
	return err
}

const insertGroceryItem = `INSERT INTO grocery_items (position, description, cost, units) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertGroceryItem(ctx context.Context, row groceryRow) error {
	_, err := q.db.ExecContext(ctx, insertGroceryItem, row.Position, row.Description, row.Cost, row.Units)
	return err
}

const listGroceryItems = `SELECT position, description, cost, units FROM grocery_items ORDER BY position`

func (q *Queries) ListGroceryItems(ctx context.Context) ([]groceryRow, error) {
	rows, err := q.db.QueryContext(ctx, listGroceryItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []groceryRow
	for rows.Next() {
		var row groceryRow
		if err := rows.Scan(&row.Position, &row.Description, &row.Cost, &row.Units); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

const addHistory = `INSERT INTO history (collection, source, event_type, details, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) AddHistory(ctx context.Context, row historyRow) (int64, error) {
	if row.CreatedAt == "" {
		row.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	result, err := q.db.ExecContext(ctx, addHistory, row.Collection, row.Source, row.EventType, row.Details, row.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listHistory = `SELECT id, collection, source, event_type, details, created_at FROM history ORDER BY id DESC LIMIT ?`

func (q *Queries) ListHistory(ctx context.Context, limit int) ([]historyRow, error) {
	rows, err := q.db.QueryContext(ctx, listHistory, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []historyRow
	for rows.Next() {
		var row historyRow
		if err := rows.Scan(&row.ID, &row.Collection, &row.Source, &row.EventType, &row.Details, &row.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
