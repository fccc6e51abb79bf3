package chat_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"todo-dashboard/internal/apiclient"
	"todo-dashboard/internal/chat"
	"todo-dashboard/internal/model"
	"todo-dashboard/internal/testutil"
)

func newSession(t *testing.T) (*chat.Session, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	clock := func() time.Time { return time.Date(2024, 5, 1, 9, 7, 0, 0, time.UTC) }
	return chat.New(apiclient.New(api.URL()), chat.WithClock(clock)), api
}

func TestSend_BlankMessageSendsNothing(t *testing.T) {
	s, api := newSession(t)

	for _, msg := range []string{"", "   ", "\n\t"} {
		if _, err := s.Send(context.Background(), msg); !errors.Is(err, chat.ErrEmptyMessage) {
			t.Fatalf("Send(%q): expected ErrEmptyMessage, got %v", msg, err)
		}
	}
	if api.RequestCount() != 0 {
		t.Fatalf("expected no requests, got %v", api.Requests())
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("transcript should stay empty")
	}
}

func TestSend_MarkdownReply(t *testing.T) {
	s, api := newSession(t)
	api.ChatFunc = func(string) (int, any) {
		return http.StatusOK, map[string]string{"reply": "**bold**"}
	}

	ex, err := s.Send(context.Background(), "  hi  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ex.Request.Text != "hi" || ex.Request.Sender != model.SenderUser {
		t.Fatalf("request entry: %+v", ex.Request)
	}
	if !ex.Reply.Markdown || !strings.Contains(string(ex.Reply.HTML), `<strong class="md-bold">bold</strong>`) {
		t.Fatalf("reply html: %q", ex.Reply.HTML)
	}
	if ex.Reply.Clock() != "09:07" {
		t.Fatalf("clock: %q", ex.Reply.Clock())
	}

	tr := s.Transcript()
	if len(tr) != 2 || tr[0].Sender != model.SenderUser || tr[1].Sender != model.SenderAssistant {
		t.Fatalf("transcript: %+v", tr)
	}
	if tr[0].ID == "" || tr[0].ID == tr[1].ID {
		t.Fatalf("messages need distinct ids: %q %q", tr[0].ID, tr[1].ID)
	}
	if s.Busy() {
		t.Fatal("busy flag left set")
	}
}

func TestSend_EmptyReplyShowsHelpText(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{name: "blank", body: map[string]string{"reply": "  "}},
		{name: "missing", body: map[string]string{}},
		{name: "not a string", body: map[string]any{"reply": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api := newSession(t)
			api.ChatFunc = func(string) (int, any) { return http.StatusOK, tt.body }

			ex, err := s.Send(context.Background(), "hello")
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if ex.Reply.Text != chat.HelpText || ex.Reply.Markdown {
				t.Fatalf("reply: %+v", ex.Reply)
			}
		})
	}
}

func TestSend_UserTextIsEscaped(t *testing.T) {
	s, _ := newSession(t)

	ex, err := s.Send(context.Background(), "<script>alert('x')</script>")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if strings.Contains(string(ex.Request.HTML), "<script>") {
		t.Fatalf("user html not escaped: %q", ex.Request.HTML)
	}
}

func TestSend_ServerErrorUsesPayloadReason(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		reason string
	}{
		{name: "reply", body: map[string]string{"reply": "agent <down>"}, reason: "agent <down>"},
		{name: "detail", body: map[string]string{"detail": "boom"}, reason: "boom"},
		{name: "none", body: map[string]int{"x": 1}, reason: "HTTP error 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api := newSession(t)
			api.ChatFunc = func(string) (int, any) { return http.StatusInternalServerError, tt.body }

			ex, err := s.Send(context.Background(), "hi")
			var re *chat.RequestError
			if !errors.As(err, &re) || re.Reason != tt.reason {
				t.Fatalf("expected RequestError(%q), got %v", tt.reason, err)
			}
			if ex.Reply.Text != "Sorry, there was an error: "+tt.reason || !ex.Reply.Error || ex.Reply.Markdown {
				t.Fatalf("reply: %+v", ex.Reply)
			}
			if strings.Contains(string(ex.Reply.HTML), "<down>") {
				t.Fatalf("error text not escaped: %q", ex.Reply.HTML)
			}
		})
	}
}

func TestSend_NetworkFailure(t *testing.T) {
	s, api := newSession(t)
	api.Server.Close()

	ex, err := s.Send(context.Background(), "hi")
	var ne *chat.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ex.Reply.Text != "Sorry, there was an error: "+chat.NetworkReason {
		t.Fatalf("reply: %q", ex.Reply.Text)
	}
	if s.Busy() {
		t.Fatal("busy must be cleared after failure")
	}
}

func TestSend_BusyRejectsSecondMessage(t *testing.T) {
	s, api := newSession(t)
	gate := make(chan struct{})
	api.ChatGate = gate

	started := make(chan struct{})
	var once sync.Once
	unsub := s.Subscribe(func(snap chat.Snapshot) {
		if snap.Busy {
			once.Do(func() { close(started) })
		}
	})
	defer unsub()

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		done <- err
	}()
	<-started

	if _, err := s.Send(context.Background(), "second"); !errors.Is(err, chat.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
	if api.CountRequests("POST /agent/chat") != 1 {
		t.Fatalf("requests: %v", api.Requests())
	}
}

func TestClear(t *testing.T) {
	s, _ := newSession(t)
	if _, err := s.Send(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}

	var snaps []chat.Snapshot
	unsub := s.Subscribe(func(snap chat.Snapshot) { snaps = append(snaps, snap) })
	defer unsub()

	s.Clear()
	if len(s.Transcript()) != 0 {
		t.Fatal("transcript not cleared")
	}
	if len(snaps) != 1 || len(snaps[0].Messages) != 0 {
		t.Fatalf("snapshots: %+v", snaps)
	}
}

func TestClear_DropsPendingReply(t *testing.T) {
	s, api := newSession(t)
	gate := make(chan struct{})
	api.ChatGate = gate

	started := make(chan struct{})
	var once sync.Once
	s.Subscribe(func(snap chat.Snapshot) {
		if snap.Busy {
			once.Do(func() { close(started) })
		}
	})

	done := make(chan struct{})
	go func() {
		_, _ = s.Send(context.Background(), "hi")
		close(done)
	}()
	<-started
	s.Clear()
	close(gate)
	<-done

	if tr := s.Transcript(); len(tr) != 0 {
		t.Fatalf("reply to a cleared conversation was kept: %+v", tr)
	}
}
