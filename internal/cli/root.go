package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"todo-dashboard/internal/apiclient"
	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/config"
	"todo-dashboard/internal/format"
	"todo-dashboard/internal/taskstore"
	"todo-dashboard/internal/tui"
)

type App struct {
	APIURL     string
	ConfigPath string
	PrettyJSON bool
	Format     string
	LogFile    string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "todo-dashboard",
		Short:         "To-do list dashboard with an assistant chat (TUI, web, CLI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todo-dashboard

  # Run the reference API and the web dashboard
  todo-dashboard serve
  todo-dashboard web

  # Scriptable commands
  todo-dashboard tasks list --filter active
  todo-dashboard tasks add "Buy groceries" --description "Milk, bread"

  # Direct task lookup (shortcut for: todo-dashboard tasks show 3)
  todo-dashboard 3
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Task API base URL (overrides config and TODO_API_URL)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TODO_DASHBOARD_CONFIG", ""), "Config file (default ~/.todo-dashboard/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TODO_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Write logs to this file while the TUI runs")
	addKlogFlags(cmd.PersistentFlags())

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newChatCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// addKlogFlags exposes klog's flags (-v, --vmodule, ...) on the cobra root.
func addKlogFlags(fs *pflag.FlagSet) {
	gfs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(gfs)
	fs.AddGoFlagSet(gfs)
}

func (app *App) loadConfig() error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(app.APIURL); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	app.cfg = cfg
	return nil
}

func (app *App) config() *config.Config {
	if app.cfg == nil {
		return config.Default()
	}
	return app.cfg
}

func (app *App) client() *apiclient.Client {
	return apiclient.New(app.config().API.BaseURL)
}

func runTUI(cmd *cobra.Command, app *App) error {
	closeLog, err := redirectLogs(app.LogFile)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeLog()

	client := app.client()
	st := taskstore.New(client)
	session := chat.New(client)
	return tui.Run(commandContext(cmd), st, session, tui.Options{Theme: app.config().TUI.Theme})
}

// redirectLogs keeps klog off the terminal while the TUI owns it.
func redirectLogs(path string) (func(), error) {
	klog.LogToStderr(false)
	if strings.TrimSpace(path) == "" {
		klog.SetOutput(io.Discard)
		return func() { klog.LogToStderr(true) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		klog.LogToStderr(true)
		return nil, fmt.Errorf("open log file: %w", err)
	}
	klog.SetOutput(f)
	return func() {
		klog.Flush()
		klog.LogToStderr(true)
		_ = f.Close()
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envelope is the JSON shape of every command's output.
type envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`
}

func (e envelope) WriteText(w io.Writer) error {
	if t, ok := e.Data.(format.Texter); ok {
		if err := t.WriteText(w); err != nil {
			return err
		}
	} else if err := format.WriteJSON(w, e.Data, true); err != nil {
		return err
	}
	for _, h := range e.Hints {
		if _, err := fmt.Fprintln(w, "hint: "+h); err != nil {
			return err
		}
	}
	return nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	if _, ok := v.(envelope); !ok {
		v = envelope{Data: v}
	}
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return &reportedError{err: err}
}
