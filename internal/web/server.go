// Package web serves the browser dashboard: the task list and the assistant
// chat, kept live over Datastar SSE streams.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"
	"k8s.io/klog/v2"

	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskstore"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

const keepAliveInterval = 25 * time.Second

type ServerConfig struct {
	Addr string
	// APIURL is shown in the footer so users know which backend they are looking at.
	APIURL string
}

type Server struct {
	cfg     ServerConfig
	tmpl    *template.Template
	store   *taskstore.Store
	session *chat.Session

	tasksHub *resourceHub
	chatHub  *resourceHub
	unsubs   []func()
}

func NewServer(cfg ServerConfig, store *taskstore.Store, session *chat.Session) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if store == nil || session == nil {
		return nil, errors.New("web: store and chat session are required")
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		store:    store,
		session:  session,
		tasksHub: newResourceHub(),
		chatHub:  newResourceHub(),
	}
	s.unsubs = append(s.unsubs,
		store.Subscribe(func(taskstore.View) { s.tasksHub.broadcast() }),
		session.Subscribe(func(chat.Snapshot) { s.chatHub.broadcast() }),
	)
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Close detaches the server from the store and chat session.
func (s *Server) Close() {
	for _, u := range s.unsubs {
		u()
	}
	s.unsubs = nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /{$}", s.handleHome)

	mux.HandleFunc("GET /tasks/stream", s.handleTasksStream)
	mux.HandleFunc("POST /tasks", s.handleTaskAdd)
	mux.HandleFunc("POST /tasks/{id}/toggle", s.handleTaskToggle)
	mux.HandleFunc("POST /tasks/{id}/edit", s.handleTaskEdit)
	mux.HandleFunc("DELETE /tasks/{id}", s.handleTaskDelete)
	mux.HandleFunc("POST /filter/{filter}", s.handleFilter)

	mux.HandleFunc("GET /chat/stream", s.handleChatStream)
	mux.HandleFunc("POST /chat", s.handleChatSend)
	mux.HandleFunc("POST /chat/clear", s.handleChatClear)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		klog.Infof("web: listening on http://%s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		// SSE streams end when their request contexts are cancelled by Shutdown's close.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return srv.Close()
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil {
		http.Error(w, "missing app.css", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}

type filterTabVM struct {
	Filter model.Filter
	Label  string
	Count  int
	Active bool
}

type tasksVM struct {
	View      taskstore.View
	Filters   []filterTabVM
	LoadError string
}

type chatVM struct {
	Messages []model.ChatMessage
	Busy     bool
}

type alertVM struct {
	Message string
}

type pageVM struct {
	Now    string
	APIURL string
	Tasks  tasksVM
	Chat   chatVM
	Alert  alertVM
}

func (s *Server) tasksVM() tasksVM {
	v := s.store.View()
	vm := tasksVM{View: v}
	for _, f := range model.Filters {
		n := v.Total
		switch f {
		case model.FilterActive:
			n = v.Stats.Active
		case model.FilterCompleted:
			n = v.Stats.Completed
		}
		vm.Filters = append(vm.Filters, filterTabVM{Filter: f, Label: f.Label(), Count: n, Active: f == v.Filter})
	}
	if v.LoadErr != nil {
		vm.LoadError = taskstore.AlertLoad
	}
	return vm
}

func (s *Server) chatVM() chatVM {
	snap := s.session.Snapshot()
	return chatVM{Messages: snap.Messages, Busy: snap.Busy}
}

// handleHome reloads the task list, like opening the page always did.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	vm := pageVM{
		Now:    time.Now().Format(time.RFC3339),
		APIURL: s.cfg.APIURL,
	}
	if err := s.store.Load(r.Context()); err != nil {
		klog.Errorf("web: load tasks: %v", err)
		vm.Alert.Message = taskstore.AlertLoad
	}
	vm.Tasks = s.tasksVM()
	vm.Chat = s.chatVM()
	s.writeHTMLTemplate(w, "index.html", vm)
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) renderTasks() (string, error) { return s.renderTemplate("tasks_panel", s.tasksVM()) }

func (s *Server) renderChat() (string, error) { return s.renderTemplate("chat_messages", s.chatVM()) }

// serveElementsStream patches selector with render() now and after every hub tick.
func (s *Server) serveElementsStream(w http.ResponseWriter, r *http.Request, hub *resourceHub, selector string, render func() (string, error)) {
	sse := datastar.NewSSE(w, r)

	ch, cancel := hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	patch := func() {
		html, err := render()
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		_ = sse.PatchElements(html, datastar.WithSelector(selector), datastar.WithMode(datastar.ElementPatchModeOuter))
	}
	patch()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			patch()
		}
	}
}

func (s *Server) handleTasksStream(w http.ResponseWriter, r *http.Request) {
	s.serveElementsStream(w, r, s.tasksHub, "#tasks-panel", s.renderTasks)
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	s.serveElementsStream(w, r, s.chatHub, "#chat-messages", s.renderChat)
}
