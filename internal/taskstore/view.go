package taskstore

import "todo-dashboard/internal/model"

// View is the render-ready state of the store.
type View struct {
	Filter model.Filter `json:"filter"`
	// Tasks is the filtered subset, in server order.
	Tasks []model.Task `json:"tasks"`
	// Total is the size of the unfiltered list.
	Total int         `json:"total"`
	Stats model.Stats `json:"stats"`
	// LoadErr is set when the last load failed and the list was reset.
	LoadErr error `json:"-"`
}

// Empty reports whether the filtered view has nothing to show.
func (v View) Empty() bool { return len(v.Tasks) == 0 }

func BuildView(tasks []model.Task, filter model.Filter) View {
	return View{
		Filter: filter,
		Tasks:  VisibleTasks(tasks, filter),
		Total:  len(tasks),
		Stats:  ComputeStats(tasks),
	}
}

// VisibleTasks returns the tasks matching filter without modifying tasks.
func VisibleTasks(tasks []model.Task, filter model.Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Match(t.Status) {
			out = append(out, t)
		}
	}
	return out
}

func ComputeStats(tasks []model.Task) model.Stats {
	var s model.Stats
	for _, t := range tasks {
		if t.Status {
			s.Completed++
		} else {
			s.Active++
		}
	}
	return s
}

// NextPlaceholderID is the id proposed for a new task: one more than the
// current maximum, or 1 for an empty list. The server may replace it.
func NextPlaceholderID(tasks []model.Task) int {
	max := 0
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

func findTask(tasks []model.Task, id int) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
