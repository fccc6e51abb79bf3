package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo-dashboard/internal/model"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Name }

func (i taskItem) Title() string {
	box := "[ ]"
	if i.task.Completed() {
		box = "[x]"
	}
	return fmt.Sprintf("%s #%d %s", box, i.task.ID, i.task.Name)
}

func (i taskItem) Description() string { return i.task.Description }

func newList(items []list.Item) list.Model {
	l := list.New(items, newTaskDelegate(), 0, 0)
	l.Title = "Tasks"
	// Tabs, counters and the footer are drawn by the app, so the list chrome stays off.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	// ESC cancels in this app; only q quits.
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases.
	l.KeyMap.CursorUp.SetKeys(append(append([]string{}, l.KeyMap.CursorUp.Keys()...), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(append([]string{}, l.KeyMap.CursorDown.Keys()...), "ctrl+n")...)
	return l
}

func taskItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}

// taskDelegate renders a task as a title row plus a muted description row.
type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		done: styleDone.Strikethrough(true),
	}
}

func (d taskDelegate) Height() int  { return 2 }
func (d taskDelegate) Spacing() int { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	contentW := m.Width()
	if !ok || contentW < 4 {
		return
	}

	titleStyle := d.normal
	if it.task.Completed() {
		titleStyle = d.done
	}
	descStyle := styleMuted()
	if index == m.Index() {
		titleStyle = d.selected
		descStyle = d.selected.Bold(false)
	}

	desc := strings.TrimSpace(it.Description())
	if desc == "" {
		desc = "-"
	}
	title := fitWidth(it.Title(), contentW)
	desc = fitWidth("    "+strings.ReplaceAll(desc, "\n", " "), contentW)
	fmt.Fprint(w, titleStyle.Render(title)+"\n"+descStyle.Render(desc))
}
