package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/taskstore"
)

// statusAutoClearAfter is how long a status line message stays up.
const statusAutoClearAfter = 6 * time.Second

type tasksLoadedMsg struct{ err error }

// taskOpDoneMsg reports a finished store mutation. prefix is the alert prefix
// used when err is set.
type taskOpDoneMsg struct {
	prefix string
	err    error
	added  bool
}

type chatDoneMsg struct{ err error }

// tasksChangedMsg and chatChangedMsg are sent by store and session subscribers.
type tasksChangedMsg struct{}

type chatChangedMsg struct{}

type clearStatusMsg struct{ seq int }

func loadTasksCmd(ctx context.Context, st *taskstore.Store) tea.Cmd {
	return func() tea.Msg {
		return tasksLoadedMsg{err: st.Load(ctx)}
	}
}

func addTaskCmd(ctx context.Context, st *taskstore.Store, name, desc string) tea.Cmd {
	return func() tea.Msg {
		return taskOpDoneMsg{prefix: taskstore.AlertAdd, err: st.Add(ctx, name, desc), added: true}
	}
}

func updateTaskCmd(ctx context.Context, st *taskstore.Store, id int, field, value string) tea.Cmd {
	return func() tea.Msg {
		return taskOpDoneMsg{prefix: taskstore.AlertUpdate, err: st.Update(ctx, id, field, value)}
	}
}

func toggleTaskCmd(ctx context.Context, st *taskstore.Store, id int) tea.Cmd {
	return func() tea.Msg {
		return taskOpDoneMsg{prefix: taskstore.AlertToggle, err: st.ToggleStatus(ctx, id)}
	}
}

func removeTaskCmd(ctx context.Context, st *taskstore.Store, id int) tea.Cmd {
	return func() tea.Msg {
		return taskOpDoneMsg{prefix: taskstore.AlertDelete, err: st.Remove(ctx, id)}
	}
}

func sendChatCmd(ctx context.Context, s *chat.Session, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Send(ctx, text)
		return chatDoneMsg{err: err}
	}
}

func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusAutoClearAfter, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
