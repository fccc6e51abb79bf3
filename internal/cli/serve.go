package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"todo-dashboard/internal/agent"
	"todo-dashboard/internal/apiserver"
	"todo-dashboard/internal/taskdb"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, dbPath, mode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference task API and chat agent",
		Long: strings.TrimSpace(`
Run the task CRUD API and the /agent/chat endpoint backed by a SQLite file.

Routes: GET /, POST /add, PUT /update/{id}, DELETE /delete/{id}, POST /agent/chat, GET /health.
`),
		Example: strings.TrimSpace(`
todo-dashboard serve
todo-dashboard serve --addr :8000 --db ./todos.db
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			if strings.TrimSpace(addr) == "" {
				addr = cfg.Server.Addr
			}
			if strings.TrimSpace(dbPath) == "" {
				dbPath = cfg.Server.DBPath
			}
			if strings.TrimSpace(mode) == "" {
				mode = cfg.Server.Mode
			}

			ctx := commandContext(cmd)
			db, err := taskdb.Open(ctx, dbPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			srv := apiserver.New(db, agent.New(db), mode)
			_ = writeOut(cmd, app, map[string]any{
				"addr": addr,
				"db":   db.Path(),
				"mode": mode,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Task API listening on http://%s (db=%s)\n", addr, db.Path())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (default server.addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file (default server.db_path)")
	cmd.Flags().StringVar(&mode, "mode", "", "gin mode: debug|release|test (default server.mode)")
	return cmd
}
