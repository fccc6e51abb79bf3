package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskstore"
)

type pane int

const (
	paneTasks pane = iota
	paneChat
)

type modalKind int

const (
	modalNone modalKind = iota
	modalAdd
	modalEdit
	modalConfirmDelete
	modalConfirmClear
)

const (
	confirmDeleteText = "Are you sure you want to delete this task?"
	confirmClearText  = "Are you sure you want to clear the chat history?"
)

type appModel struct {
	ctx     context.Context
	store   *taskstore.Store
	session *chat.Session
	keys    keyMap
	help    help.Model

	width  int
	height int
	pane   pane

	view  taskstore.View
	tasks list.Model

	chatInput  textarea.Model
	chatView   viewport.Model
	spinner    spinner.Model
	transcript []model.ChatMessage
	chatBusy   bool

	modal        modalKind
	confirmFocus confirmModalFocus
	targetID     int
	editField    string
	nameInput    textinput.Model
	descInput    textinput.Model
	editInput    textinput.Model
	addOnDesc    bool

	statusText  string
	statusError bool
	statusSeq   int
}

func newAppModel(ctx context.Context, st *taskstore.Store, session *chat.Session) appModel {
	m := appModel{
		ctx:     ctx,
		store:   st,
		session: session,
		keys:    defaultKeyMap(),
		help:    help.New(),
		pane:    paneTasks,
	}

	m.tasks = newList(nil)

	m.chatInput = textarea.New()
	m.chatInput.Placeholder = "Ask me to manage your tasks..."
	m.chatInput.ShowLineNumbers = false
	m.chatInput.SetHeight(2)
	m.chatInput.CharLimit = 2000
	// Enter sends; the textarea never inserts newlines.
	m.chatInput.KeyMap.InsertNewline.SetEnabled(false)

	m.chatView = viewport.New(0, 0)
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))

	m.nameInput = newTextInput("Task name")
	m.descInput = newTextInput("Description (optional)")
	m.editInput = newTextInput("")

	m.refreshTasks()
	m.refreshChat()
	return m
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 500
	return ti
}

func (m appModel) Init() tea.Cmd {
	return loadTasksCmd(m.ctx, m.store)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tasksLoadedMsg:
		m.refreshTasks()
		if msg.err != nil {
			return m, m.setStatus(taskstore.AlertLoad, true)
		}
		return m, nil

	case taskOpDoneMsg:
		m.refreshTasks()
		if msg.err != nil {
			return m, m.setStatus(taskstore.AlertFor(msg.prefix, msg.err), true)
		}
		if msg.added {
			// Bring the new task into view.
			m.tasks.Select(len(m.tasks.Items()) - 1)
		}
		return m, nil

	case tasksChangedMsg:
		m.refreshTasks()
		return m, nil

	case chatChangedMsg:
		m.refreshChat()
		return m, nil

	case chatDoneMsg:
		m.chatBusy = false
		m.refreshChat()
		if errors.Is(msg.err, chat.ErrBusy) {
			return m, m.setStatus("The assistant is still answering", true)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.chatBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshChat()
		return m, cmd

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusText = ""
			m.statusError = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if m.pane == paneChat {
			return m.updateChat(msg)
		}
		return m.updateTasks(msg)
	}
	return m, nil
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.SwitchPane):
		m.focusPane(paneChat)
		return m, textarea.Blink
	case key.Matches(msg, m.keys.Reload):
		return m, loadTasksCmd(m.ctx, m.store)
	case key.Matches(msg, m.keys.NextFilter):
		m.setFilter(nextFilter(m.view.Filter))
		return m, nil
	case key.Matches(msg, m.keys.FilterAll):
		m.setFilter(model.FilterAll)
		return m, nil
	case key.Matches(msg, m.keys.FilterActive):
		m.setFilter(model.FilterActive)
		return m, nil
	case key.Matches(msg, m.keys.FilterDone):
		m.setFilter(model.FilterCompleted)
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.openAdd()
		return m, textinput.Blink
	}

	if t, ok := m.selectedTask(); ok {
		switch {
		case key.Matches(msg, m.keys.Toggle):
			return m, toggleTaskCmd(m.ctx, m.store, t.ID)
		case key.Matches(msg, m.keys.EditName):
			m.openEdit(t, "name", t.Name)
			return m, textinput.Blink
		case key.Matches(msg, m.keys.EditDesc):
			m.openEdit(t, "description", t.Description)
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Delete):
			m.modal = modalConfirmDelete
			m.targetID = t.ID
			m.confirmFocus = confirmFocusConfirm
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

func (m appModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.SwitchPane):
		m.focusPane(paneTasks)
		return m, nil
	case key.Matches(msg, m.keys.ClearChat):
		m.modal = modalConfirmClear
		m.confirmFocus = confirmFocusConfirm
		return m, nil
	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" || m.chatBusy {
			return m, nil
		}
		m.chatInput.Reset()
		m.chatBusy = true
		m.refreshChat()
		return m, tea.Batch(sendChatCmd(m.ctx, m.session, text), m.spinner.Tick)
	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.closeModal()
		return m, nil
	}

	switch m.modal {
	case modalConfirmDelete, modalConfirmClear:
		switch {
		case key.Matches(msg, m.keys.NextField), msg.String() == "left", msg.String() == "right":
			m.confirmFocus = m.confirmFocus.toggle()
			return m, nil
		case msg.String() == "y":
			return m.confirm()
		case msg.String() == "n":
			m.closeModal()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			if m.confirmFocus == confirmFocusConfirm {
				return m.confirm()
			}
			m.closeModal()
			return m, nil
		}
		return m, nil

	case modalAdd:
		switch {
		case key.Matches(msg, m.keys.NextField):
			m.addOnDesc = !m.addOnDesc
			m.focusAddField()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Submit):
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				return m, m.setStatus(taskstore.AlertEmptyName, true)
			}
			desc := m.descInput.Value()
			m.closeModal()
			return m, addTaskCmd(m.ctx, m.store, name, desc)
		}
		var cmd tea.Cmd
		if m.addOnDesc {
			m.descInput, cmd = m.descInput.Update(msg)
		} else {
			m.nameInput, cmd = m.nameInput.Update(msg)
		}
		return m, cmd

	case modalEdit:
		if key.Matches(msg, m.keys.Submit) {
			id, field, value := m.targetID, m.editField, m.editInput.Value()
			m.closeModal()
			return m, updateTaskCmd(m.ctx, m.store, id, field, value)
		}
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) confirm() (tea.Model, tea.Cmd) {
	kind, id := m.modal, m.targetID
	m.closeModal()
	switch kind {
	case modalConfirmDelete:
		return m, removeTaskCmd(m.ctx, m.store, id)
	case modalConfirmClear:
		m.session.Clear()
		m.refreshChat()
	}
	return m, nil
}

func (m *appModel) openAdd() {
	m.modal = modalAdd
	m.nameInput.Reset()
	m.descInput.Reset()
	m.addOnDesc = false
	m.focusAddField()
}

func (m *appModel) focusAddField() {
	if m.addOnDesc {
		m.nameInput.Blur()
		m.descInput.Focus()
		return
	}
	m.descInput.Blur()
	m.nameInput.Focus()
}

func (m *appModel) openEdit(t model.Task, field, value string) {
	m.modal = modalEdit
	m.targetID = t.ID
	m.editField = field
	m.editInput.SetValue(value)
	m.editInput.CursorEnd()
	m.editInput.Focus()
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.targetID = 0
	m.editField = ""
	m.nameInput.Blur()
	m.descInput.Blur()
	m.editInput.Blur()
}

func (m *appModel) focusPane(p pane) {
	m.pane = p
	if p == paneChat {
		m.chatInput.Focus()
		return
	}
	m.chatInput.Blur()
}

func (m *appModel) setFilter(f model.Filter) {
	m.store.SetFilter(f)
	m.refreshTasks()
	m.tasks.Select(0)
}

func nextFilter(f model.Filter) model.Filter {
	for i, x := range model.Filters {
		if x == f {
			return model.Filters[(i+1)%len(model.Filters)]
		}
	}
	return model.FilterAll
}

func (m *appModel) selectedTask() (model.Task, bool) {
	it, ok := m.tasks.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

// refreshTasks rebuilds the list from the store, keeping the selected task
// selected when it is still visible.
func (m *appModel) refreshTasks() {
	selectedID := 0
	if t, ok := m.selectedTask(); ok {
		selectedID = t.ID
	}
	m.view = m.store.View()
	m.tasks.SetItems(taskItems(m.view.Tasks))
	for i, t := range m.view.Tasks {
		if t.ID == selectedID {
			m.tasks.Select(i)
			break
		}
	}
}

func (m *appModel) refreshChat() {
	snap := m.session.Snapshot()
	m.transcript = snap.Messages
	m.chatView.SetContent(m.renderTranscript(m.chatView.Width))
	m.chatView.GotoBottom()
}

// setStatus shows text in the status line until it is replaced or times out.
func (m *appModel) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.statusText = text
	m.statusError = isErr
	return clearStatusAfter(m.statusSeq)
}
