package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskstore"
	"todo-dashboard/internal/testutil"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	// Keep tests away from ~/.todo-dashboard and the developer's environment.
	t.Setenv("TODO_DASHBOARD_CONFIG_DIR", t.TempDir())
	t.Setenv("TODO_DASHBOARD_CONFIG", "")
	t.Setenv("TODO_API_URL", "")

	cmd := NewRootCmd()
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRunJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("command failed: %v\nerr: %v\nstderr:\n%s", args, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key in envelope; got %v", env)
	}
	return env
}

func TestTasksList_FilterAndStats(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Seed(model.Task{ID: 1, Name: "a"}, model.Task{ID: 2, Name: "b", Status: true})

	env := mustRunJSON(t, "--api-url", api.URL(), "tasks", "list", "--filter", "active")
	data := env["data"].(map[string]any)
	if data["filter"] != "active" {
		t.Fatalf("filter = %v", data["filter"])
	}
	tasks := data["tasks"].([]any)
	if len(tasks) != 1 || tasks[0].(map[string]any)["name"] != "a" {
		t.Fatalf("unexpected tasks: %v", tasks)
	}
	stats := data["stats"].(map[string]any)
	if stats["active"] != float64(1) || stats["completed"] != float64(1) {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestTasksList_InvalidFilter(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	_, stderr, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "list", "--filter", "done")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(stderr), "invalid filter") {
		t.Fatalf("stderr = %s", stderr)
	}
	if api.RequestCount() != 0 {
		t.Fatalf("expected no request, got %v", api.Requests())
	}
}

func TestTasksList_TextFormat(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Seed(model.Task{ID: 1, Name: "milk", Description: "2%"}, model.Task{ID: 2, Name: "bread", Status: true})

	stdout, _, err := runCLI(t, "", "--api-url", api.URL(), "--format", "text", "tasks", "list")
	if err != nil {
		t.Fatal(err)
	}
	want := "[ ] #1 milk  (2%)\n[x] #2 bread\n\n1 completed  1 active\n"
	if string(stdout) != want {
		t.Fatalf("stdout:\n%q\nwant:\n%q", stdout, want)
	}
}

func TestTasksList_LoadFailure(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Fail(http.MethodGet, "/", http.StatusInternalServerError, nil)

	_, stderr, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "list")
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.TrimSpace(string(stderr)) != taskstore.AlertLoad {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestTasksAddEditToggleRm(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Seed(model.Task{ID: 4, Name: "existing"})
	url := api.URL()

	env := mustRunJSON(t, "--api-url", url, "tasks", "add", "Buy", "groceries", "--description", "milk")
	added := env["data"].(map[string]any)
	if added["id"] != float64(5) || added["name"] != "Buy groceries" || added["description"] != "milk" {
		t.Fatalf("unexpected added task: %v", added)
	}

	env = mustRunJSON(t, "--api-url", url, "tasks", "edit", "5", "--name", "Buy food")
	if got := env["data"].(map[string]any)["name"]; got != "Buy food" {
		t.Fatalf("name = %v", got)
	}

	env = mustRunJSON(t, "--api-url", url, "tasks", "toggle", "#5")
	if got := env["data"].(map[string]any)["status"]; got != true {
		t.Fatalf("status = %v", got)
	}

	mustRunJSON(t, "--api-url", url, "tasks", "rm", "4", "--yes")
	tasks := api.Tasks()
	if len(tasks) != 1 || tasks[0] != (model.Task{ID: 5, Name: "Buy food", Description: "milk", Status: true}) {
		t.Fatalf("unexpected server tasks: %+v", tasks)
	}
}

func TestTasksAdd_ServerAssignedID(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Seed(model.Task{ID: 1, Name: "a"})
	api.ReassignIDs = true

	env := mustRunJSON(t, "--api-url", api.URL(), "tasks", "add", "b")
	if got := env["data"].(map[string]any)["id"]; got != float64(101) {
		t.Fatalf("id = %v, want the server-assigned id", got)
	}
}

func TestTasksAdd_Rejected(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Fail(http.MethodPost, "/add", http.StatusBadRequest, map[string]string{"detail": "Failed to add task: nope"})

	_, stderr, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "add", "x")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := strings.TrimSpace(string(stderr)); got != "Could not add task: HTTP error! status: 400" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestTasksRm_Confirmation(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Seed(model.Task{ID: 1, Name: "a"})

	_, stderr, err := runCLI(t, "n\n", "--api-url", api.URL(), "tasks", "rm", "1")
	if err == nil || !strings.Contains(string(stderr), confirmDeletePrompt) {
		t.Fatalf("expected abort after prompt; err=%v stderr=%s", err, stderr)
	}
	if len(api.Tasks()) != 1 {
		t.Fatalf("task must survive a declined confirmation")
	}

	if _, _, err := runCLI(t, "y\n", "--api-url", api.URL(), "tasks", "rm", "1"); err != nil {
		t.Fatal(err)
	}
	if len(api.Tasks()) != 0 {
		t.Fatalf("expected task deleted")
	}
}

func TestTasksRm_NotFound(t *testing.T) {
	api := testutil.NewFakeAPI(t)

	_, stderr, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "rm", "9", "--yes")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := strings.TrimSpace(string(stderr)); got != "Could not delete task: HTTP error! status: 404" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestTasksShow(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Seed(model.Task{ID: 3, Name: "c"})

	env := mustRunJSON(t, "--api-url", api.URL(), "tasks", "show", "3")
	if got := env["data"].(map[string]any)["name"]; got != "c" {
		t.Fatalf("name = %v", got)
	}
	_, stderr, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "show", "7")
	if err == nil || strings.TrimSpace(string(stderr)) != "Task 7 not found" {
		t.Fatalf("err=%v stderr=%q", err, stderr)
	}
}

func TestTasksEdit_RequiresAFlag(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Seed(model.Task{ID: 1, Name: "a"})
	if _, _, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "edit", "1"); err == nil {
		t.Fatalf("expected error")
	}
	if api.RequestCount() != 0 {
		t.Fatalf("expected no request")
	}
}

func TestChat_OneShot(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.ChatFunc = func(message string) (int, any) {
		return http.StatusOK, map[string]string{"reply": "You said: " + message}
	}

	stdout, _, err := runCLI(t, "", "--api-url", api.URL(), "--format", "text", "chat", "show", "tasks")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(stdout)) != "You said: show tasks" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestChat_ServerError(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.ChatFunc = func(string) (int, any) {
		return http.StatusInternalServerError, map[string]string{"detail": "agent down"}
	}

	stdout, _, err := runCLI(t, "", "--api-url", api.URL(), "--format", "text", "chat", "hi")
	if err == nil {
		t.Fatalf("expected error exit")
	}
	if strings.TrimSpace(string(stdout)) != "Sorry, there was an error: agent down" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestChat_REPL(t *testing.T) {
	api := testutil.NewFakeAPI(t)

	stdout, _, err := runCLI(t, "hello\n\n/clear\nbye\n/quit\n", "--api-url", api.URL(), "chat")
	if err != nil {
		t.Fatal(err)
	}
	out := string(stdout)
	for _, want := range []string{"Todo List AI Agent", "hello\n", "(chat cleared)", "bye\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if got := api.CountRequests("POST /agent/chat"); got != 2 {
		t.Fatalf("chat requests = %d, want 2", got)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	env := mustRunJSON(t, "--config", path, "--api-url", "http://example.test:9000/", "config", "init")
	data := env["data"].(map[string]any)
	if data["path"] != path {
		t.Fatalf("path = %v", data["path"])
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "base_url: http://example.test:9000") {
		t.Fatalf("unexpected file:\n%s", b)
	}

	if _, _, err := runCLI(t, "", "--config", path, "config", "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting without --force")
	}

	env = mustRunJSON(t, "--config", path, "config", "show")
	cfg := env["data"].(map[string]any)["config"].(map[string]any)
	if got := cfg["api"].(map[string]any)["baseUrl"]; got != "http://example.test:9000" {
		t.Fatalf("baseUrl = %v", got)
	}
}

func TestInvalidAPIURLFlag(t *testing.T) {
	if _, _, err := runCLI(t, "", "--api-url", "ftp://x", "tasks", "list"); err == nil {
		t.Fatalf("expected invalid api url to fail")
	}
}

func TestErrors_PrintedOnce(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Fail(http.MethodPost, "/add", http.StatusBadRequest, nil)

	_, stderr, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "add", "x")
	if err == nil {
		t.Fatalf("expected error")
	}
	var rest bytes.Buffer
	ReportError(&rest, err)
	if rest.Len() != 0 {
		t.Fatalf("error reported twice: %q", rest.String())
	}
	if n := strings.Count(string(stderr), "Could not add task"); n != 1 {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestErrors_UsageErrorIsReported(t *testing.T) {
	api := testutil.NewFakeAPI(t)

	_, stderr, err := runCLI(t, "", "--api-url", api.URL(), "tasks", "show")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(stderr) != 0 {
		t.Fatalf("expected cobra to stay quiet, stderr = %q", stderr)
	}
	var out bytes.Buffer
	ReportError(&out, err)
	if !strings.HasPrefix(out.String(), "Error: ") {
		t.Fatalf("ReportError wrote %q", out.String())
	}
}

func TestReplyText_RawWhenNotATerminal(t *testing.T) {
	msg := model.ChatMessage{Text: "**done**", Markdown: true}
	var buf bytes.Buffer
	if got := replyText(&buf, msg, "dark"); got != "**done**" {
		t.Fatalf("replyText = %q", got)
	}
	if got := replyText(os.Stderr, model.ChatMessage{Text: "**plain**"}, "dark"); got != "**plain**" {
		t.Fatalf("non-markdown reply changed: %q", got)
	}
}
