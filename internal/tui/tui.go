// Package tui is the terminal front end: task list and assistant chat side by side.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/taskstore"
)

type Options struct {
	// Theme is light, dark or auto. Empty falls back to TODO_TUI_THEME.
	Theme string
}

// Run starts the full-screen dashboard and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, st *taskstore.Store, session *chat.Session, opts Options) error {
	if st == nil || session == nil {
		return errors.New("tui: store and chat session are required")
	}
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	p, detach := newProgram(ctx, st, session, tea.WithAltScreen())
	defer detach()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// newProgram wires store and session change notifications into the program.
// Notifications also fire from inside Update (filter changes, chat clear), so
// they are delivered asynchronously and never block the event loop.
func newProgram(ctx context.Context, st *taskstore.Store, session *chat.Session, opts ...tea.ProgramOption) (*tea.Program, func()) {
	opts = append(opts, tea.WithContext(ctx))
	p := tea.NewProgram(newAppModel(ctx, st, session), opts...)

	unsubTasks := st.Subscribe(func(taskstore.View) { go p.Send(tasksChangedMsg{}) })
	unsubChat := session.Subscribe(func(chat.Snapshot) { go p.Send(chatChangedMsg{}) })
	return p, func() {
		unsubTasks()
		unsubChat()
	}
}
