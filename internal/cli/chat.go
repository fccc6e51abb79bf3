package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/model"
	"todo-dashboard/internal/tui"
)

const replyWidth = 80

// chatReplyOutput is the payload of a one-shot chat.
type chatReplyOutput struct {
	Request model.ChatMessage `json:"request"`
	Reply   model.ChatMessage `json:"reply"`

	theme string
}

func (o chatReplyOutput) WriteText(w io.Writer) error {
	_, err := fmt.Fprintln(w, replyText(w, o.Reply, o.theme))
	return err
}

// replyText renders markdown replies with glamour when w is a color terminal
// and returns the raw text otherwise.
func replyText(w io.Writer, msg model.ChatMessage, theme string) string {
	if !msg.Markdown || !isColorTerminal(w) {
		return msg.Text
	}
	if out := tui.RenderReply(msg.Text, replyWidth, theme); out != "" {
		return strings.TrimRight(out, "\n")
	}
	return msg.Text
}

func isColorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
}

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message...]",
		Short: "Talk to the task assistant",
		Long: strings.TrimSpace(`
Send one message to the assistant and print its reply, or start an
interactive session when no message is given.

In the interactive session, /clear empties the conversation and /quit (or EOF) exits.
`),
		Example: strings.TrimSpace(`
todo-dashboard chat "show me all my tasks"
todo-dashboard --format text chat "mark task 1 as complete"
todo-dashboard chat
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := chat.New(app.client())
			if len(args) == 0 {
				return runChatREPL(cmd, session, app.config().TUI.Theme)
			}

			ex, err := session.Send(commandContext(cmd), strings.Join(args, " "))
			if errors.Is(err, chat.ErrEmptyMessage) {
				return writeErr(cmd, err)
			}
			out := chatReplyOutput{Request: ex.Request, Reply: ex.Reply, theme: app.config().TUI.Theme}
			if outErr := writeOut(cmd, app, out); outErr != nil {
				return outErr
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

func runChatREPL(cmd *cobra.Command, session *chat.Session, theme string) error {
	out := cmd.OutOrStdout()
	prompt := cmd.ErrOrStderr()

	fmt.Fprintln(out, chat.IntroTitle)
	fmt.Fprintln(out, chat.IntroText)
	fmt.Fprintln(out, "Try saying:")
	for _, p := range chat.IntroPrompts {
		fmt.Fprintln(out, "  "+p)
	}

	sc := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(prompt, "> ")
		if !sc.Scan() {
			fmt.Fprintln(prompt)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			session.Clear()
			fmt.Fprintln(out, "(chat cleared)")
			continue
		}

		ex, err := session.Send(commandContext(cmd), line)
		if err != nil && ex.Reply.Text == "" {
			fmt.Fprintln(prompt, err.Error())
			continue
		}
		fmt.Fprintln(out, replyText(out, ex.Reply, theme))
	}
}
