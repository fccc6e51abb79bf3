// Package taskstore keeps the local task cache consistent with the remote task API.
//
// The cache is never patched locally: every successful mutation is followed by a
// full reload, so the server's answer to that read is always what the store holds.
package taskstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"todo-dashboard/internal/model"

	"k8s.io/klog/v2"
)

// Field names accepted by Update.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldStatus      = "status"
)

// TaskAPI is the remote task collaborator. *apiclient.Client implements it.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, t model.Task) error
	ReplaceTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id int) error
}

type Store struct {
	api TaskAPI

	// opMu serializes operations: one request plus its reload at a time.
	opMu sync.Mutex

	mu      sync.RWMutex
	tasks   []model.Task
	filter  model.Filter
	loadErr error

	subMu   sync.Mutex
	subs    map[int]func(View)
	nextSub int
}

func New(api TaskAPI) *Store {
	return &Store{
		api:    api,
		tasks:  []model.Task{},
		filter: model.FilterAll,
		subs:   map[int]func(View){},
	}
}

// Subscribe registers fn to receive the view after every load and filter change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(View)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// View returns the current filtered view.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := BuildView(s.tasks, s.filter)
	v.LoadErr = s.loadErr
	return v
}

// Tasks returns a copy of the full cached list.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Filter() model.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Task looks a task up in the cache.
func (s *Store) Task(id int) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findTask(s.tasks, id)
}

// SetFilter switches the visible subset. It performs no I/O.
func (s *Store) SetFilter(f model.Filter) {
	if _, err := model.ParseFilter(string(f)); err != nil {
		f = model.FilterAll
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	s.notify()
}

// Load replaces the cache with the server's task list. On failure the cache is
// reset to empty and a *LoadError is returned.
func (s *Store) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.reload(ctx)
}

// Add creates a task. The name and description are trimmed; a blank name
// returns ErrEmptyName without contacting the server.
func (s *Store) Add(ctx context.Context, name, description string) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return ErrEmptyName
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	placeholder := NextPlaceholderID(s.tasks)
	s.mu.RUnlock()

	t := model.Task{ID: placeholder, Name: name, Description: description, Status: false}
	if err := s.api.CreateTask(ctx, t); err != nil {
		return &AddError{Name: name, Err: err}
	}
	// The placeholder id is never trusted; the reload decides.
	if err := s.reload(ctx); err != nil {
		return err
	}
	return nil
}

// Update replaces one field of a task. Unknown ids are a no-op. When the server
// rejects the change the store still reloads so the cache matches the server.
func (s *Store) Update(ctx context.Context, id int, field, value string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur, ok := s.Task(id)
	if !ok {
		klog.V(2).Infof("taskstore: update of unknown task %d ignored", id)
		return nil
	}
	next, err := applyField(cur, field, value)
	if err != nil {
		return &UpdateError{ID: id, Field: field, Err: err}
	}
	return s.replace(ctx, next, field)
}

// ToggleStatus flips the completed flag of a task. Unknown ids are a no-op.
func (s *Store) ToggleStatus(ctx context.Context, id int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur, ok := s.Task(id)
	if !ok {
		return nil
	}
	cur.Status = !cur.Status
	return s.replace(ctx, cur, FieldStatus)
}

// Remove deletes a task. On failure nothing is reloaded and a *DeleteError is returned.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.api.DeleteTask(ctx, id); err != nil {
		return &DeleteError{ID: id, Err: err}
	}
	return s.reload(ctx)
}

// replace must be called with opMu held.
func (s *Store) replace(ctx context.Context, t model.Task, field string) error {
	if err := s.api.ReplaceTask(ctx, t); err != nil {
		if rerr := s.reload(ctx); rerr != nil {
			klog.Errorf("taskstore: reload after failed update of task %d: %v", t.ID, rerr)
		}
		return &UpdateError{ID: t.ID, Field: field, Err: err}
	}
	return s.reload(ctx)
}

// reload must be called with opMu held.
func (s *Store) reload(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		klog.V(2).Infof("taskstore: load failed: %v", err)
		s.mu.Lock()
		s.tasks = []model.Task{}
		s.loadErr = err
		s.mu.Unlock()
		s.notify()
		return &LoadError{Err: err}
	}

	tasks = append([]model.Task{}, tasks...)
	klog.V(2).Infof("taskstore: loaded %d tasks", len(tasks))

	s.mu.Lock()
	s.tasks = tasks
	s.loadErr = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) notify() {
	v := s.View()

	s.subMu.Lock()
	fns := make([]func(View), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func applyField(t model.Task, field, value string) (model.Task, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldName:
		name := strings.TrimSpace(value)
		if name == "" {
			return t, fmt.Errorf("%w: name must not be empty", ErrInvalidValue)
		}
		t.Name = name
	case FieldDescription:
		t.Description = strings.TrimSpace(value)
	case FieldStatus:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return t, fmt.Errorf("%w: status %q is not a boolean", ErrInvalidValue, value)
		}
		t.Status = b
	default:
		return t, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return t, nil
}
