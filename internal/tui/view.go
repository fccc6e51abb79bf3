package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskstore"
)

// Split layout below this width shows only the focused pane.
const minSplitWidth = 90

func (m *appModel) paneSizes() (tasksW, chatW, bodyH int) {
	bodyH = m.height - 3
	if bodyH < 6 {
		bodyH = 6
	}
	if m.width < minSplitWidth {
		return m.width, m.width, bodyH
	}
	tasksW = m.width * 11 / 20
	return tasksW, m.width - tasksW, bodyH
}

func (m *appModel) resize() {
	tasksW, chatW, bodyH := m.paneSizes()
	// Border and padding take 4 columns and 2 rows.
	innerTasksW, innerChatW, innerH := tasksW-4, chatW-4, bodyH-2

	// Tabs, stats and a blank line sit above the list.
	m.tasks.SetSize(max(innerTasksW, 10), max(innerH-3, 2))

	inputH := m.chatInput.Height()
	m.chatInput.SetWidth(max(innerChatW, 10))
	m.chatView.Width = max(innerChatW, 10)
	m.chatView.Height = max(innerH-inputH-2, 2)
	m.help.Width = m.width
	m.refreshChat()
}

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}
	if modal := m.renderModal(); modal != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	tasksW, chatW, bodyH := m.paneSizes()
	var body string
	switch {
	case m.width < minSplitWidth && m.pane == paneChat:
		body = m.renderChatPane(chatW, bodyH)
	case m.width < minSplitWidth:
		body = m.renderTasksPane(tasksW, bodyH)
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderTasksPane(tasksW, bodyH),
			m.renderChatPane(chatW, bodyH),
		)
	}

	return strings.Join([]string{
		normalizePane(m.renderHeader(), m.width, 1),
		body,
		normalizePane(m.renderStatus(), m.width, 1),
		normalizePane(m.renderHelp(), m.width, 1),
	}, "\n")
}

func (m appModel) renderHeader() string {
	stats := m.view.Stats
	right := styleMuted().Render(fmt.Sprintf("%d completed  %d active", stats.Completed, stats.Active))
	return styleHeader.Render("Todo Dashboard") + "  " + right
}

func (m appModel) renderTabs() string {
	tabs := make([]string, 0, len(model.Filters))
	for _, f := range model.Filters {
		label := fmt.Sprintf("%s %d", f.Label(), m.filterCount(f))
		if f == m.view.Filter {
			tabs = append(tabs, styleTabOn.Render(label))
		} else {
			tabs = append(tabs, styleTabOff.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m appModel) filterCount(f model.Filter) int {
	switch f {
	case model.FilterActive:
		return m.view.Stats.Active
	case model.FilterCompleted:
		return m.view.Stats.Completed
	default:
		return m.view.Total
	}
}

func (m appModel) renderTasksPane(width, height int) string {
	innerW, innerH := width-4, height-2
	lines := []string{m.renderTabs(), ""}

	switch {
	case m.view.LoadErr != nil && m.view.Total == 0:
		lines = append(lines, styleError.Render(taskstore.AlertLoad))
	case m.view.Empty():
		lines = append(lines, "No tasks found", styleMuted().Render("Add a new task to get started"))
	default:
		lines = append(lines, m.tasks.View())
	}

	content := normalizePane(strings.Join(lines, "\n"), innerW, innerH)
	return panelStyle(m.pane == paneTasks).Render(content)
}

func (m appModel) renderChatPane(width, height int) string {
	innerW, innerH := width-4, height-2
	content := strings.Join([]string{
		m.chatView.View(),
		"",
		m.chatInput.View(),
	}, "\n")
	return panelStyle(m.pane == paneChat).Render(normalizePane(content, innerW, innerH))
}

// renderTranscript draws the conversation, or the intro while it is empty.
func (m appModel) renderTranscript(width int) string {
	if width < 10 {
		width = 10
	}
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	if len(m.transcript) == 0 {
		b.WriteString(styleHeader.Render(chat.IntroTitle) + "\n")
		b.WriteString(wrap.Render(chat.IntroText) + "\n\n")
		b.WriteString(styleMuted().Render("Try saying:") + "\n")
		for _, p := range chat.IntroPrompts {
			b.WriteString(wrap.Render("• "+p) + "\n")
		}
	}

	for i, msg := range m.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		who := styleAgent.Render("Assistant")
		if msg.Sender == model.SenderUser {
			who = styleUser.Render("You")
		}
		b.WriteString(who + "  " + styleMuted().Render(msg.Clock()) + "\n")
		switch {
		case msg.Error:
			b.WriteString(styleError.Width(width).Render(msg.Text))
		case msg.Markdown:
			b.WriteString(renderMarkdown(msg.Text, width))
		default:
			b.WriteString(wrap.Render(msg.Text))
		}
		b.WriteString("\n")
	}

	if m.chatBusy {
		b.WriteString("\n" + m.spinner.View() + styleMuted().Render(" thinking…"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m appModel) renderStatus() string {
	if m.statusText == "" {
		return ""
	}
	if m.statusError {
		return styleError.Render(m.statusText)
	}
	return m.statusText
}

func (m appModel) renderHelp() string {
	bindings := m.keys.taskHelp()
	if m.pane == paneChat {
		bindings = m.keys.chatHelp()
	}
	return m.help.ShortHelpView(bindings)
}

func (m appModel) renderModal() string {
	bodyW := modalBodyWidth(m.width)
	switch m.modal {
	case modalConfirmDelete:
		return renderConfirmModal(m.width, "Delete task", confirmDeleteText, "Delete", "Cancel", m.confirmFocus)
	case modalConfirmClear:
		return renderConfirmModal(m.width, "Clear chat", confirmClearText, "Clear", "Cancel", m.confirmFocus)
	case modalAdd:
		content := strings.Join([]string{
			"Name",
			renderInputLine(bodyW, m.nameInput.View()),
			"",
			"Description",
			renderInputLine(bodyW, m.descInput.View()),
			"",
			m.renderStatus(),
			styleMuted().Width(bodyW).Render("tab: next field   enter: add   esc: cancel"),
		}, "\n")
		return renderModalBox(m.width, "Add task", content)
	case modalEdit:
		title := fmt.Sprintf("Edit task #%d %s", m.targetID, m.editField)
		content := strings.Join([]string{
			renderInputLine(bodyW, m.editInput.View()),
			"",
			styleMuted().Width(bodyW).Render("enter: save   esc: cancel"),
		}, "\n")
		return renderModalBox(m.width, title, content)
	}
	return ""
}
