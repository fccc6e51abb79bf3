// Package taskdb persists tasks for the reference API server in a SQLite file.
package taskdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"todo-dashboard/internal/model"

	_ "modernc.org/sqlite"
)

type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("taskdb: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("taskdb: create dir: %w", err)
		}
	}

	// modernc.org/sqlite registers as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("taskdb: %s: %w", p, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("taskdb: migrate: %w", err)
	}
	klog.V(2).Infof("taskdb: opened %s", path)
	return &DB{db: db, path: path}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		status INTEGER DEFAULT 0
	);`)
	return err
}

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Path() string { return d.path }

// List returns every task ordered by id. Rows that cannot be decoded are skipped.
func (d *DB) List(ctx context.Context) ([]model.Task, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, name, description, status FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			klog.V(2).Infof("taskdb: skipping row: %v", err)
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns one task or a *NotFoundError.
func (d *DB) Get(ctx context.Context, id int) (model.Task, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, name, description, status FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, &NotFoundError{ID: id}
	}
	return t, err
}

// Insert stores t under its own id; a taken id is a *DuplicateError.
func (d *DB) Insert(ctx context.Context, t model.Task) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// Create stores a new task under the next free id and returns it.
func (d *DB) Create(ctx context.Context, name, description string, status bool) (model.Task, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := nextID(ctx, tx)
	if err != nil {
		return model.Task{}, err
	}
	t := model.Task{ID: id, Name: name, Description: description, Status: status}
	if err := insertTx(ctx, tx, t); err != nil {
		return model.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// Update replaces every field of the task with t.ID; a missing id is a *NotFoundError.
func (d *DB) Update(ctx context.Context, t model.Task) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, description = ?, status = ? WHERE id = ?`,
		t.Name, t.Description, boolInt(t.Status), t.ID)
	if err != nil {
		return err
	}
	return requireRow(res, t.ID)
}

// Delete removes a task; a missing id is a *NotFoundError.
func (d *DB) Delete(ctx context.Context, id int) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// NextID is one more than the largest id, or 1 for an empty table.
func (d *DB) NextID(ctx context.Context) (int, error) {
	return nextID(ctx, d.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nextID(ctx context.Context, q queryer) (int, error) {
	var max int
	if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM tasks`).Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

func insertTx(ctx context.Context, tx *sql.Tx, t model.Task) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, t.ID).Scan(&one)
	switch {
	case err == nil:
		return &DuplicateError{ID: t.ID}
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, name, description, status) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, boolInt(t.Status))
	return err
}

func requireRow(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var (
		t      model.Task
		name   sql.NullString
		desc   sql.NullString
		status any
	)
	if err := s.Scan(&t.ID, &name, &desc, &status); err != nil {
		return model.Task{}, err
	}
	t.Name = name.String
	t.Description = desc.String
	t.Status = CoerceStatus(status)
	return t, nil
}

// CoerceStatus reads a status column that may hold legacy values: numbers are
// true when non-zero, text is true for 1/true/yes/done/completed.
func CoerceStatus(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []byte:
		return coerceText(string(x))
	case string:
		return coerceText(x)
	default:
		return false
	}
}

func coerceText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "done", "completed":
		return true
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
