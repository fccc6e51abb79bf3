package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
	"k8s.io/klog/v2"

	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskstore"
)

const scrollLastTask = `document.querySelector('#tasks-list .task-card:last-child')?.scrollIntoView({behavior: 'smooth'})`

type addSignals struct {
	TaskName        string `json:"taskName"`
	TaskDescription string `json:"taskDescription"`
}

type editSignals struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// respond patches the task panel and the alert region; an empty message clears the alert.
func (s *Server) respond(sse *datastar.ServerSentEventGenerator, message string) {
	if html, err := s.renderTasks(); err == nil {
		_ = sse.PatchElements(html, datastar.WithSelector("#tasks-panel"), datastar.WithMode(datastar.ElementPatchModeOuter))
	} else {
		klog.Errorf("web: render tasks: %v", err)
	}
	if html, err := s.renderTemplate("alert", alertVM{Message: message}); err == nil {
		_ = sse.PatchElements(html, datastar.WithSelector("#alert"), datastar.WithMode(datastar.ElementPatchModeOuter))
	}
}

func pathTaskID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("id")))
	return id, err == nil
}

func (s *Server) handleTaskAdd(w http.ResponseWriter, r *http.Request) {
	var sig addSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)

	err := s.store.Add(r.Context(), sig.TaskName, sig.TaskDescription)
	switch {
	case errors.Is(err, taskstore.ErrEmptyName):
		s.respond(sse, taskstore.AlertEmptyName)
	case err != nil:
		klog.V(2).Infof("web: add task: %v", err)
		s.respond(sse, taskstore.AlertFor(taskstore.AlertAdd, err))
	default:
		_ = sse.MarshalAndPatchSignals(map[string]any{
			"taskName":        "",
			"taskDescription": "",
			"showAddForm":     false,
		})
		s.respond(sse, "")
		_ = sse.ExecuteScript(scrollLastTask)
	}
}

func (s *Server) handleTaskToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTaskID(r)
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)
	if err := s.store.ToggleStatus(r.Context(), id); err != nil {
		klog.V(2).Infof("web: toggle task %d: %v", id, err)
		s.respond(sse, taskstore.AlertFor(taskstore.AlertToggle, err))
		return
	}
	s.respond(sse, "")
}

func (s *Server) handleTaskEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTaskID(r)
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	var sig editSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)
	if err := s.store.Update(r.Context(), id, sig.Field, sig.Value); err != nil {
		klog.V(2).Infof("web: edit task %d: %v", id, err)
		s.respond(sse, taskstore.AlertFor(taskstore.AlertUpdate, err))
		return
	}
	s.respond(sse, "")
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTaskID(r)
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)
	if err := s.store.Remove(r.Context(), id); err != nil {
		klog.V(2).Infof("web: delete task %d: %v", id, err)
		s.respond(sse, taskstore.AlertFor(taskstore.AlertDelete, err))
		return
	}
	s.respond(sse, "")
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	f, err := model.ParseFilter(r.PathValue("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sse := datastar.NewSSE(w, r)
	s.store.SetFilter(f)
	s.respond(sse, "")
}
