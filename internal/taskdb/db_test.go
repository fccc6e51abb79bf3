package taskdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"todo-dashboard/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "sub", "todos.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_CRUD(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if tasks, err := db.List(ctx); err != nil || tasks == nil || len(tasks) != 0 {
		t.Fatalf("empty List: %v %#v", err, tasks)
	}
	if id, err := db.NextID(ctx); err != nil || id != 1 {
		t.Fatalf("NextID on empty table: %d %v", id, err)
	}

	for _, tk := range []model.Task{
		{ID: 7, Name: "seven", Description: "d7"},
		{ID: 2, Name: "two", Status: true},
	} {
		if err := db.Insert(ctx, tk); err != nil {
			t.Fatalf("Insert %d: %v", tk.ID, err)
		}
	}

	tasks, err := db.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].ID != 2 || tasks[1].ID != 7 {
		t.Fatalf("List must be ordered by id: %+v", tasks)
	}
	if !tasks[0].Status || tasks[1].Description != "d7" {
		t.Fatalf("fields: %+v", tasks)
	}

	if id, _ := db.NextID(ctx); id != 8 {
		t.Fatalf("NextID: %d", id)
	}

	if err := db.Update(ctx, model.Task{ID: 7, Name: "renamed", Status: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := db.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got != (model.Task{ID: 7, Name: "renamed", Status: true}) {
		t.Fatalf("Get after update: %+v", got)
	}

	if err := db.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get deleted: %v", err)
	}
}

func TestDB_Errors(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.Insert(ctx, model.Task{ID: 1, Name: "a"}); err != nil {
		t.Fatal(err)
	}
	err := db.Insert(ctx, model.Task{ID: 1, Name: "b"})
	if !errors.Is(err, ErrDuplicateID) || err.Error() != "Task id 1 already exists" {
		t.Fatalf("duplicate insert: %v", err)
	}

	err = db.Update(ctx, model.Task{ID: 5, Name: "x"})
	if !errors.Is(err, ErrNotFound) || err.Error() != "Task 5 not found" {
		t.Fatalf("update missing: %v", err)
	}
	var nf *NotFoundError
	if err := db.Delete(ctx, 5); !errors.As(err, &nf) || nf.ID != 5 {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestDB_Create(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if err := db.Insert(ctx, model.Task{ID: 4, Name: "a"}); err != nil {
		t.Fatal(err)
	}

	got, err := db.Create(ctx, "b", "desc", false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != 5 || got.Name != "b" || got.Description != "desc" {
		t.Fatalf("created: %+v", got)
	}
}

func TestDB_LegacyStatusValues(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	rows := []struct {
		id     int
		status any
		want   bool
	}{
		{1, "done", true},
		{2, "Completed", true},
		{3, " yes ", true},
		{4, "no", false},
		{5, 3, true},
		{6, nil, false},
	}
	for _, r := range rows {
		if _, err := db.db.ExecContext(ctx, `INSERT INTO tasks (id, name, status) VALUES (?, ?, ?)`, r.id, "t", r.status); err != nil {
			t.Fatalf("seed %d: %v", r.id, err)
		}
	}
	tasks, err := db.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != len(rows) {
		t.Fatalf("got %d tasks", len(tasks))
	}
	for i, r := range rows {
		if tasks[i].Status != r.want {
			t.Errorf("status %#v: got %v want %v", r.status, tasks[i].Status, r.want)
		}
	}
}

func TestCoerceStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{int64(0), false},
		{int64(1), true},
		{float64(0.5), true},
		{[]byte("TRUE"), true},
		{"pending", false},
		{struct{}{}, false},
	}
	for _, tt := range tests {
		if got := CoerceStatus(tt.in); got != tt.want {
			t.Errorf("CoerceStatus(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
