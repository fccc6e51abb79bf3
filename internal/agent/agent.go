// Package agent answers chat messages by recognising a small set of task
// commands and running them against the task database.
package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskdb"
)

// Repo is the task persistence the agent acts on. *taskdb.DB implements it.
type Repo interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id int) (model.Task, error)
	Create(ctx context.Context, name, description string, status bool) (model.Task, error)
	Update(ctx context.Context, t model.Task) error
	Delete(ctx context.Context, id int) error
}

const (
	EmptyListReply = "No tasks found. Time to get productive!"

	HelpReply = "I can help you manage your tasks. Try:\n\n" +
		"- **Show my tasks**\n" +
		"- **Create a task called** 'Buy groceries' **with description** 'Milk, bread'\n" +
		"- **Mark task 1 as complete** / **Mark task 1 as pending**\n" +
		"- **Update task 2 description to** 'Call mom'\n" +
		"- **Rename task 2 to** 'Call dad'\n" +
		"- **Delete task 3**"
)

type Agent struct {
	repo Repo
}

func New(repo Repo) *Agent {
	return &Agent{repo: repo}
}

// Reply runs the command in message and returns a markdown answer. Failures of
// individual commands are reported in the answer; the error is reserved for a
// cancelled context.
func (a *Agent) Reply(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cmd := Parse(message)
	klog.V(4).Infof("agent: %q -> %s", message, cmd.Intent)

	var reply string
	switch cmd.Intent {
	case IntentShow:
		reply = a.showTasks(ctx)
	case IntentCreate:
		reply = a.createTask(ctx, cmd)
	case IntentUpdate:
		reply = a.updateTask(ctx, cmd)
	case IntentDelete:
		reply = a.removeTask(ctx, cmd.ID)
	case IntentComplete:
		reply = a.setStatus(ctx, cmd.ID, true)
	case IntentPending:
		reply = a.setStatus(ctx, cmd.ID, false)
	default:
		reply = HelpReply
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return reply, nil
}

func (a *Agent) createTask(ctx context.Context, cmd Command) string {
	if strings.TrimSpace(cmd.Name) == "" {
		return "Please tell me the task name, for example: Create a task called 'Buy groceries'"
	}
	t, err := a.repo.Create(ctx, cmd.Name, cmd.Description, false)
	if err != nil {
		return fmt.Sprintf("Failed to create task: %v", err)
	}
	return fmt.Sprintf("Created task #%d: %s", t.ID, t.Name)
}

func (a *Agent) updateTask(ctx context.Context, cmd Command) string {
	cur, err := a.repo.Get(ctx, cmd.ID)
	if errors.Is(err, taskdb.ErrNotFound) {
		return fmt.Sprintf("Task #%d not found", cmd.ID)
	}
	if err != nil {
		return fmt.Sprintf("Failed to update task: %v", err)
	}
	switch cmd.Field {
	case "description":
		cur.Description = cmd.Value
	default:
		if strings.TrimSpace(cmd.Value) == "" {
			return "Failed to update task: name must not be empty"
		}
		cur.Name = cmd.Value
	}
	if err := a.repo.Update(ctx, cur); err != nil {
		return fmt.Sprintf("Failed to update task: %v", err)
	}
	return fmt.Sprintf("Updated task #%d: %s", cur.ID, cur.Name)
}

func (a *Agent) showTasks(ctx context.Context) string {
	tasks, err := a.repo.List(ctx)
	if err != nil {
		return fmt.Sprintf("Failed to fetch tasks: %v", err)
	}
	return FormatTasks(tasks)
}

// FormatTasks renders the task list the way the assistant shows it.
func FormatTasks(tasks []model.Task) string {
	if len(tasks) == 0 {
		return EmptyListReply
	}
	var b strings.Builder
	b.WriteString("Here are your tasks:\n\n")
	for _, t := range tasks {
		icon, state := "⏳", "Pending"
		if t.Status {
			icon, state = "✅", "Done"
		}
		fmt.Fprintf(&b, "%s **Task #%d**: %s\n", icon, t.ID, t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, "   📝 %s\n", t.Description)
		}
		fmt.Fprintf(&b, "   Status: %s\n\n", state)
	}
	return b.String()
}

func (a *Agent) removeTask(ctx context.Context, id int) string {
	err := a.repo.Delete(ctx, id)
	if errors.Is(err, taskdb.ErrNotFound) {
		return fmt.Sprintf("Error: %v", err)
	}
	if err != nil {
		return fmt.Sprintf("Failed to delete task: %v", err)
	}
	return fmt.Sprintf("Task deleted: Task %d deleted.", id)
}

func (a *Agent) setStatus(ctx context.Context, id int, done bool) string {
	verb, already := "pending", "pending"
	if done {
		verb, already = "complete", "completed"
	}
	cur, err := a.repo.Get(ctx, id)
	if errors.Is(err, taskdb.ErrNotFound) {
		return fmt.Sprintf("Task #%d not found", id)
	}
	if err != nil {
		return fmt.Sprintf("Failed to mark task %s: %v", verb, err)
	}
	if cur.Status == done {
		return fmt.Sprintf("Task #%d is already %s", id, already)
	}
	cur.Status = done
	if err := a.repo.Update(ctx, cur); err != nil {
		return fmt.Sprintf("Failed to mark task %s: %v", verb, err)
	}
	return fmt.Sprintf("Task #%d marked as %s", id, verb)
}

type Intent string

const (
	IntentHelp     Intent = "help"
	IntentShow     Intent = "show"
	IntentCreate   Intent = "create"
	IntentUpdate   Intent = "update"
	IntentDelete   Intent = "delete"
	IntentComplete Intent = "complete"
	IntentPending  Intent = "pending"
)

// Command is a parsed chat message.
type Command struct {
	Intent      Intent
	ID          int
	Name        string
	Description string
	// Field and Value describe an update: Field is "name" or "description".
	Field string
	Value string
}

var (
	reTaskID   = `task\s*#?(\d+)`
	rePending  = regexp.MustCompile(`(?i)\b(?:mark|set)\s+` + reTaskID + `\s+(?:as\s+)?(?:pending|incomplete|not\s+done|undone|open|todo)\b|\breopen\s+` + reTaskID)
	reComplete = regexp.MustCompile(`(?i)\b(?:mark|set)\s+` + reTaskID + `\s+(?:as\s+)?(?:complete|completed|done|finished)\b|\b(?:complete|finish)\s+` + reTaskID)
	reDelete   = regexp.MustCompile(`(?i)\b(?:delete|remove)\s+` + reTaskID)
	reRename   = regexp.MustCompile(`(?i)\brename\s+` + reTaskID + `\s+(?:to\s+)?(.+)$`)
	reUpdate   = regexp.MustCompile(`(?i)\b(?:update|change|edit|set)\s+` + reTaskID + `(?:'s)?\s+(name|title|description)\s+(?:to\s+|as\s+)?(.+)$`)
	reCreate   = regexp.MustCompile(`(?i)\b(?:create|add|new)\b(?:\s+(?:a|an|new|another))*\s+task\b\s*(.*)$`)
	reDescPart = regexp.MustCompile(`(?i)\s*,?\s+(?:with\s+)?(?:the\s+)?description\s*(?:of|:|is)?\s*(.+)$`)
	reNamePart = regexp.MustCompile(`(?i)^(?:called|named|titled|:)?\s*(.+)$`)
	reShow     = regexp.MustCompile(`(?i)\b(?:show|list|display|see|view|what)\b.*\btasks?\b|^\s*(?:my\s+)?tasks\s*\??\s*$`)
)

// Parse recognises the command in a chat message. Unknown input is IntentHelp.
func Parse(message string) Command {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Command{Intent: IntentHelp}
	}
	if m := rePending.FindStringSubmatch(msg); m != nil {
		return Command{Intent: IntentPending, ID: firstID(m[1:])}
	}
	if m := reComplete.FindStringSubmatch(msg); m != nil {
		return Command{Intent: IntentComplete, ID: firstID(m[1:])}
	}
	if m := reDelete.FindStringSubmatch(msg); m != nil {
		return Command{Intent: IntentDelete, ID: firstID(m[1:])}
	}
	if m := reRename.FindStringSubmatch(msg); m != nil {
		return Command{Intent: IntentUpdate, ID: firstID(m[1:2]), Field: "name", Value: unquote(m[2])}
	}
	if m := reUpdate.FindStringSubmatch(msg); m != nil {
		field := strings.ToLower(m[2])
		if field == "title" {
			field = "name"
		}
		return Command{Intent: IntentUpdate, ID: firstID(m[1:2]), Field: field, Value: unquote(m[3])}
	}
	if m := reCreate.FindStringSubmatch(msg); m != nil {
		name, desc := splitCreate(m[1])
		return Command{Intent: IntentCreate, Name: name, Description: desc}
	}
	if reShow.MatchString(msg) {
		return Command{Intent: IntentShow}
	}
	return Command{Intent: IntentHelp}
}

func splitCreate(rest string) (name, description string) {
	rest = strings.TrimSpace(rest)
	if m := reDescPart.FindStringSubmatchIndex(rest); m != nil {
		description = unquote(rest[m[2]:m[3]])
		rest = rest[:m[0]]
	}
	if m := reNamePart.FindStringSubmatch(strings.TrimSpace(rest)); m != nil {
		name = unquote(m[1])
	}
	return name, description
}

func firstID(groups []string) int {
	for _, g := range groups {
		if g == "" {
			continue
		}
		if n, err := strconv.Atoi(g); err == nil {
			return n
		}
	}
	return 0
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".!")
	for _, pair := range [][2]string{{"'", "'"}, {`"`, `"`}, {"“", "”"}, {"‘", "’"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}
