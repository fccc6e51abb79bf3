package taskstore

import (
	"testing"

	"todo-dashboard/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: 1, Name: "a", Status: false},
		{ID: 2, Name: "b", Status: true},
		{ID: 5, Name: "c", Status: false},
		{ID: 9, Name: "d", Status: true},
	}
}

func TestVisibleTasks_FiltersPartitionTheList(t *testing.T) {
	t.Parallel()

	tasks := sampleTasks()
	all := VisibleTasks(tasks, model.FilterAll)
	active := VisibleTasks(tasks, model.FilterActive)
	completed := VisibleTasks(tasks, model.FilterCompleted)

	if len(all) != len(tasks) {
		t.Fatalf("all: got %d want %d", len(all), len(tasks))
	}
	if len(active)+len(completed) != len(all) {
		t.Fatalf("active(%d)+completed(%d) != all(%d)", len(active), len(completed), len(all))
	}

	seen := map[int]model.Filter{}
	for _, tk := range active {
		if tk.Status {
			t.Fatalf("active contains completed task %d", tk.ID)
		}
		seen[tk.ID] = model.FilterActive
	}
	for _, tk := range completed {
		if !tk.Status {
			t.Fatalf("completed contains active task %d", tk.ID)
		}
		if _, dup := seen[tk.ID]; dup {
			t.Fatalf("task %d in both active and completed", tk.ID)
		}
		seen[tk.ID] = model.FilterCompleted
	}
	for _, tk := range all {
		if _, ok := seen[tk.ID]; !ok {
			t.Fatalf("task %d missing from active ∪ completed", tk.ID)
		}
	}
}

func TestVisibleTasks_KeepsOrderAndDoesNotAlias(t *testing.T) {
	t.Parallel()

	tasks := sampleTasks()
	got := VisibleTasks(tasks, model.FilterActive)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 5 {
		t.Fatalf("unexpected active order: %+v", got)
	}
	got[0].Name = "changed"
	if tasks[0].Name != "a" {
		t.Fatal("VisibleTasks must not alias the input")
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	got := ComputeStats(sampleTasks())
	if got.Active != 2 || got.Completed != 2 {
		t.Fatalf("stats: %+v", got)
	}
	if z := ComputeStats(nil); z.Active != 0 || z.Completed != 0 {
		t.Fatalf("empty stats: %+v", z)
	}
}

func TestNextPlaceholderID(t *testing.T) {
	t.Parallel()

	if got := NextPlaceholderID(nil); got != 1 {
		t.Fatalf("empty: got %d", got)
	}
	if got := NextPlaceholderID(sampleTasks()); got != 10 {
		t.Fatalf("max+1: got %d", got)
	}
}

func TestBuildView(t *testing.T) {
	t.Parallel()

	v := BuildView(sampleTasks(), model.FilterCompleted)
	if v.Filter != model.FilterCompleted || v.Total != 4 || len(v.Tasks) != 2 {
		t.Fatalf("view: %+v", v)
	}
	if v.Stats.Completed != 2 {
		t.Fatalf("stats are computed on the whole list: %+v", v.Stats)
	}
	if !BuildView(nil, model.FilterAll).Empty() {
		t.Fatal("expected empty view")
	}
}

func TestApplyField(t *testing.T) {
	t.Parallel()

	base := model.Task{ID: 3, Name: "n", Description: "d"}
	tests := []struct {
		field, value string
		want         model.Task
		wantErr      bool
	}{
		{field: "name", value: "new", want: model.Task{ID: 3, Name: "new", Description: "d"}},
		{field: "description", value: "", want: model.Task{ID: 3, Name: "n"}},
		{field: "status", value: "true", want: model.Task{ID: 3, Name: "n", Description: "d", Status: true}},
		{field: "name", value: "   ", wantErr: true},
		{field: "status", value: "maybe", wantErr: true},
		{field: "priority", value: "x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := applyField(base, tt.field, tt.value)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s=%q: expected error", tt.field, tt.value)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s=%q: %v", tt.field, tt.value, err)
		}
		if got != tt.want {
			t.Fatalf("%s=%q: got %+v want %+v", tt.field, tt.value, got, tt.want)
		}
	}
}
