package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/taskstore"
	"todo-dashboard/internal/web"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser dashboard",
		Long: strings.TrimSpace(`
Serve the task dashboard and the assistant chat as a web page.

The page is rendered on the server and kept live with Datastar server-sent events.
All browser tabs share one task list and one conversation.
`),
		Example: strings.TrimSpace(`
# Serve on the configured address (web.addr, default 127.0.0.1:3335)
todo-dashboard web

# Against a remote task API
todo-dashboard --api-url http://tasks.internal:8000 web --addr :3335
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = cfg.Web.Addr
			}

			client := app.client()
			srv, err := web.NewServer(web.ServerConfig{
				Addr:   listenAddr,
				APIURL: cfg.API.BaseURL,
			}, taskstore.New(client), chat.New(client))
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			url := "http://" + listenAddr + "/"
			_ = writeOut(cmd, app, envelope{
				Data: map[string]any{
					"addr":      listenAddr,
					"url":       url,
					"apiUrl":    cfg.API.BaseURL,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: []string{"open " + url},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Todo dashboard running at %s (api=%s)\n", url, cfg.API.BaseURL)

			return srv.ListenAndServe(commandContext(cmd))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port)")
	return cmd
}
