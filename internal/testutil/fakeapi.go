// Package testutil provides testing utilities.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"todo-dashboard/internal/model"
)

// FakeAPI is an in-memory implementation of the task and chat HTTP API for tests.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	tasks    []model.Task
	requests []string
	failures map[string]fakeFailure

	// Wrapped makes GET / answer {"tasks": [...]} instead of a bare array.
	Wrapped bool
	// ListBody, when set, is written verbatim as the GET / body.
	ListBody string
	// ReassignIDs makes POST /add ignore the client id and pick its own.
	ReassignIDs bool
	// ChatFunc answers POST /agent/chat. The default echoes the message as the reply.
	ChatFunc func(message string) (status int, body any)
	// ChatGate, when non-nil, blocks chat responses until it is closed.
	ChatGate chan struct{}
}

type fakeFailure struct {
	status int
	body   any
}

// NewFakeAPI starts the fake server; it is closed when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{failures: map[string]fakeFailure{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", f.handleList)
	mux.HandleFunc("POST /add", f.handleAdd)
	mux.HandleFunc("PUT /update/{id}", f.handleUpdate)
	mux.HandleFunc("DELETE /delete/{id}", f.handleDelete)
	mux.HandleFunc("POST /agent/chat", f.handleChat)

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeAPI) URL() string { return f.Server.URL }

// Seed replaces the server-side task list.
func (f *FakeAPI) Seed(tasks ...model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append([]model.Task(nil), tasks...)
	f.sortLocked()
}

// Tasks returns a copy of the server-side task list.
func (f *FakeAPI) Tasks() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Fail makes every request matching method and path answer with status.
// body is encoded as JSON; nil writes {"detail": "<status text>"}.
func (f *FakeAPI) Fail(method, path string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = fakeFailure{status: status, body: body}
}

// ClearFailures removes every injected failure.
func (f *FakeAPI) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = map[string]fakeFailure{}
}

// Requests returns "METHOD /path" for every request seen so far.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *FakeAPI) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// CountRequests counts requests equal to "METHOD /path".
func (f *FakeAPI) CountRequests(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == key {
			n++
		}
	}
	return n
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.requests = append(f.requests, key)
		fail, failed := f.failures[key]
		f.mu.Unlock()

		if failed {
			body := fail.body
			if body == nil {
				body = map[string]string{"detail": http.StatusText(fail.status)}
			}
			writeJSON(w, fail.status, body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	raw := f.ListBody
	wrapped := f.Wrapped
	tasks := make([]model.Task, len(f.tasks))
	copy(tasks, f.tasks)
	f.mu.Unlock()

	if raw != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return
	}
	if wrapped {
		writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (f *FakeAPI) handleAdd(w http.ResponseWriter, r *http.Request) {
	var t model.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReassignIDs {
		t.ID = f.maxIDLocked() + 100
	}
	if f.indexLocked(t.ID) >= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": fmt.Sprintf("Task id %d already exists", t.ID)})
		return
	}
	f.tasks = append(f.tasks, t)
	f.sortLocked()
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Task %d added.", t.ID)})
}

func (f *FakeAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
		return
	}
	var t model.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("Task %d not found", id)})
		return
	}
	t.ID = id
	f.tasks[i] = t
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Task %d updated.", id)})
}

func (f *FakeAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("Task %d not found", id)})
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Task %d deleted.", id)})
}

func (f *FakeAPI) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	f.mu.Lock()
	gate := f.ChatGate
	fn := f.ChatFunc
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if fn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"reply": req.Message})
		return
	}
	status, body := fn(req.Message)
	writeJSON(w, status, body)
}

func (f *FakeAPI) indexLocked(id int) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) maxIDLocked() int {
	max := 0
	for _, t := range f.tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

func (f *FakeAPI) sortLocked() {
	sort.SliceStable(f.tasks, func(i, j int) bool { return f.tasks[i].ID < f.tasks[j].ID })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
