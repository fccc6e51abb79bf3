package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskstore"
)

const confirmDeletePrompt = "Are you sure you want to delete this task?"

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and change tasks on the task API",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksToggleCmd(app))
	cmd.AddCommand(newTasksRmCmd(app))
	return cmd
}

// loadedStore returns a store with the task list fetched.
func loadedStore(ctx context.Context, app *App) (*taskstore.Store, error) {
	st := taskstore.New(app.client())
	if err := st.Load(ctx); err != nil {
		return nil, taskFailure("", err)
	}
	return st, nil
}

func parseTaskID(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// taskListOutput is the payload of tasks list.
type taskListOutput struct {
	Filter model.Filter `json:"filter"`
	Tasks  []model.Task `json:"tasks"`
	Stats  model.Stats  `json:"stats"`
}

func (o taskListOutput) WriteText(w io.Writer) error {
	if len(o.Tasks) == 0 {
		if _, err := fmt.Fprintln(w, "No tasks found"); err != nil {
			return err
		}
	}
	for _, t := range o.Tasks {
		if err := writeTaskLine(w, t); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d completed  %d active\n", o.Stats.Completed, o.Stats.Active)
	return err
}

// taskOutput is the payload of commands that return one task.
type taskOutput struct {
	model.Task
}

func (o taskOutput) WriteText(w io.Writer) error { return writeTaskLine(w, o.Task) }

func writeTaskLine(w io.Writer, t model.Task) error {
	box := "[ ]"
	if t.Status {
		box = "[x]"
	}
	line := fmt.Sprintf("%s #%d %s", box, t.ID, t.Name)
	if d := strings.TrimSpace(t.Description); d != "" {
		line += "  (" + d + ")"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func newTasksListCmd(app *App) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := loadedStore(commandContext(cmd), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st.SetFilter(f)
			v := st.View()
			return writeOut(cmd, app, taskListOutput{Filter: v.Filter, Tasks: v.Tasks, Stats: v.Stats})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(model.FilterAll), "Filter (all|active|completed)")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := loadedStore(commandContext(cmd), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, ok := st.Task(id)
			if !ok {
				return writeErr(cmd, notFoundError{id: id})
			}
			return writeOut(cmd, app, taskOutput{t})
		},
	}
}

func newTasksAddCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return writeErr(cmd, errors.New(taskstore.AlertEmptyName))
			}
			ctx := commandContext(cmd)
			st, err := loadedStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.Add(ctx, name, description); err != nil {
				return writeErr(cmd, taskFailure(taskstore.AlertAdd, err))
			}
			// The server may have replaced the proposed id; the newest match is ours.
			tasks := st.Tasks()
			for i := len(tasks) - 1; i >= 0; i-- {
				if tasks[i].Name == name {
					return writeOut(cmd, app, taskOutput{tasks[i]})
				}
			}
			return writeOut(cmd, app, envelope{
				Data:  nil,
				Hints: []string{"task was added but is not in the reloaded list; run `todo-dashboard tasks list`"},
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	return cmd
}

func newTasksEditCmd(app *App) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			changes := [][2]string{}
			if cmd.Flags().Changed("name") {
				changes = append(changes, [2]string{"name", name})
			}
			if cmd.Flags().Changed("description") {
				changes = append(changes, [2]string{"description", description})
			}
			if len(changes) == 0 {
				return writeErr(cmd, errors.New("nothing to change: pass --name and/or --description"))
			}

			ctx := commandContext(cmd)
			st, err := loadedStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := st.Task(id); !ok {
				return writeErr(cmd, notFoundError{id: id})
			}
			for _, c := range changes {
				if err := st.Update(ctx, id, c[0], c[1]); err != nil {
					return writeErr(cmd, taskFailure(taskstore.AlertUpdate, err))
				}
			}
			t, _ := st.Task(id)
			return writeOut(cmd, app, taskOutput{t})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newTasksToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)
			st, err := loadedStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := st.Task(id); !ok {
				return writeErr(cmd, notFoundError{id: id})
			}
			if err := st.ToggleStatus(ctx, id); err != nil {
				return writeErr(cmd, taskFailure(taskstore.AlertToggle, err))
			}
			t, _ := st.Task(id)
			return writeOut(cmd, app, taskOutput{t})
		},
	}
}

func newTasksRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), confirmDeletePrompt)
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeErr(cmd, errAborted)
				}
			}

			ctx := commandContext(cmd)
			st, err := loadedStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.Remove(ctx, id); err != nil {
				return writeErr(cmd, taskFailure(taskstore.AlertDelete, err))
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": true})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on out and reads the answer from in. Anything
// other than y/yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
